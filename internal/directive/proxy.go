package directive

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ksyq12/vhostfrag/internal/constraint"
	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/template"
)

// Proxy group names.
const (
	GroupProxyPass  = "proxy_pass"
	GroupProxyMatch = "proxy_match"
	GroupProxyDest  = "proxy_dest"
)

// ProxyEntry maps one path to a backend URL.
type ProxyEntry struct {
	Path        string            `yaml:"path" toml:"path"`
	URL         string            `yaml:"url" toml:"url"`
	Params      map[string]string `yaml:"params,omitempty" toml:"params,omitempty"`
	Keywords    []string          `yaml:"keywords,omitempty" toml:"keywords,omitempty"`
	ReverseURLs []string          `yaml:"reverse_urls,omitempty" toml:"reverse_urls,omitempty"`
	NoProxyURIs []string          `yaml:"no_proxy_uris,omitempty" toml:"no_proxy_uris,omitempty"`
	SetEnv      []string          `yaml:"setenv,omitempty" toml:"setenv,omitempty"`
}

// Proxy declares the reverse proxy rules of a vhost.
//
// Pass renders ProxyPass, Match renders ProxyPassMatch, and Dest proxies the
// whole vhost root ("/") to a backend. ProxyRequests and PreserveHost are
// always rendered and default to Off.
type Proxy struct {
	Source   string
	OrderKey *int

	Pass  List[ProxyEntry]
	Match List[ProxyEntry]
	Dest  List[ProxyEntry]

	ProxyRequests bool
	PreserveHost  bool
	ErrorOverride bool
	AddHeaders    *bool
}

// Name returns the declaration's source name.
func (p *Proxy) Name() string { return p.Source }

// Kind returns KindProxy.
func (p *Proxy) Kind() Kind { return KindProxy }

// Order returns the ordering key, 170 unless overridden.
func (p *Proxy) Order() int { return orderOr(p.OrderKey, OrderProxy) }

// Groups returns proxy_pass, proxy_match and proxy_dest.
func (p *Proxy) Groups() []constraint.Group {
	return []constraint.Group{
		p.Pass.group(GroupProxyPass),
		p.Match.group(GroupProxyMatch),
		p.Dest.group(GroupProxyDest),
	}
}

// Check requires path and url on pass and match entries, and url on dest
// entries. Every value must fit on one line.
func (p *Proxy) Check() error {
	if err := checkName(p.Source); err != nil {
		return err
	}
	for i, e := range p.Pass.Entries {
		if err := p.checkEntry(GroupProxyPass, i, e, true); err != nil {
			return err
		}
	}
	for i, e := range p.Match.Entries {
		if err := p.checkEntry(GroupProxyMatch, i, e, true); err != nil {
			return err
		}
	}
	for i, e := range p.Dest.Entries {
		if err := p.checkEntry(GroupProxyDest, i, e, false); err != nil {
			return err
		}
	}
	return nil
}

func (p *Proxy) checkEntry(group string, i int, e ProxyEntry, needPath bool) error {
	if needPath && e.Path == "" {
		return errors.Invalid(p.Source, fmt.Sprintf("%s[%d]: path is required", group, i))
	}
	if e.URL == "" {
		return errors.Invalid(p.Source, fmt.Sprintf("%s[%d]: url is required", group, i))
	}

	keys := make([]string, 0, len(e.Params))
	for k := range e.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	params := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		params = append(params, k, e.Params[k])
	}

	fields := []struct {
		name   string
		values []string
	}{
		{"path", []string{e.Path}},
		{"url", []string{e.URL}},
		{"params", params},
		{"keywords", e.Keywords},
		{"reverse_urls", e.ReverseURLs},
		{"no_proxy_uris", e.NoProxyURIs},
		{"setenv", e.SetEnv},
	}
	for _, f := range fields {
		if err := checkLine(p.Source, fmt.Sprintf("%s[%d]: %s", group, i, f.name), f.values...); err != nil {
			return err
		}
	}
	return nil
}

type proxyRule struct {
	Directive string
	Path      string
	URL       string
	Suffix    string
	Reverse   []string
	NoProxy   []string
	SetEnv    []string
}

type proxyView struct {
	ProxyRequests bool
	PreserveHost  bool
	ErrorOverride bool
	AddHeaders    string
	Rules         []proxyRule
}

// Render returns the "## Proxy rules" block.
func (p *Proxy) Render() (string, error) {
	view := proxyView{
		ProxyRequests: p.ProxyRequests,
		PreserveHost:  p.PreserveHost,
		ErrorOverride: p.ErrorOverride,
	}
	if p.AddHeaders != nil {
		view.AddHeaders = template.OnOff(*p.AddHeaders)
	}

	for _, e := range p.Pass.Entries {
		view.Rules = append(view.Rules, passRule("ProxyPass", e))
	}
	for _, e := range p.Match.Entries {
		view.Rules = append(view.Rules, passRule("ProxyPassMatch", e))
	}
	for _, e := range p.Dest.Entries {
		view.Rules = append(view.Rules, destRule(e))
	}

	return template.Render(template.Apache, "proxy", view)
}

func passRule(directive string, e ProxyEntry) proxyRule {
	reverse := e.ReverseURLs
	if len(reverse) == 0 {
		reverse = []string{e.URL}
	}
	return proxyRule{
		Directive: directive,
		Path:      e.Path,
		URL:       e.URL,
		Suffix:    proxySuffix(e),
		Reverse:   reverse,
		NoProxy:   e.NoProxyURIs,
		SetEnv:    e.SetEnv,
	}
}

func destRule(e ProxyEntry) proxyRule {
	path := e.Path
	if path == "" {
		path = "/"
	}
	url := e.URL
	if !strings.HasSuffix(url, "/") {
		url += "/"
	}
	rule := passRule("ProxyPass", ProxyEntry{
		Path:        path,
		URL:         url,
		Params:      e.Params,
		Keywords:    e.Keywords,
		ReverseURLs: e.ReverseURLs,
		NoProxyURIs: e.NoProxyURIs,
		SetEnv:      e.SetEnv,
	})
	return rule
}

// proxySuffix renders params sorted by key, then keywords in order.
func proxySuffix(e ProxyEntry) string {
	var b strings.Builder

	keys := make([]string, 0, len(e.Params))
	for k := range e.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, e.Params[k])
	}

	for _, kw := range e.Keywords {
		b.WriteString(" " + kw)
	}
	return b.String()
}
