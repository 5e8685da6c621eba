// Package template renders Apache directive text from embedded Go templates.
//
// Every fragment kind has one template under apache/:
//
//	apache/header.tmpl    <VirtualHost> opening, ServerName, ServerAdmin, ServerAlias
//	apache/docroot.tmpl   DocumentRoot
//	apache/aliases.tmpl   Alias, AliasMatch, ScriptAlias
//	apache/rewrite.tmpl   RewriteEngine, RewriteBase, RewriteCond, RewriteMap, RewriteRule
//	apache/proxy.tmpl     ProxyRequests, ProxyPreserveHost, ProxyPass, ProxyPassReverse ...
//	apache/footer.tmpl    </VirtualHost>
//
// Templates are embedded in the binary using go:embed directives.
//
// # Whitespace
//
// Output is compared byte for byte by the web server and by tests, so every
// template follows one layout rule: literal lines stand alone, and every action
// that controls flow starts a line with "{{-" so it consumes the newline before
// it. A line of output is therefore emitted exactly when its literal line is
// reached, and Render normalizes the result to end in a single newline.
//
// # Rendering Templates
//
//	text, err := template.Render(template.Apache, "proxy", view)
//	if err != nil {
//	    return err
//	}
//
// Callers build the view. Templates do not default or validate anything;
// that happens in the directive package before Render is called.
//
// # Custom Functions
//
// Templates have access to these functions:
//   - onoff: renders a bool as On or Off
package template
