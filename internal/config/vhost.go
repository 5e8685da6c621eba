package config

import (
	"github.com/ksyq12/vhostfrag/internal/assemble"
	"github.com/ksyq12/vhostfrag/internal/directive"
	"github.com/ksyq12/vhostfrag/internal/target"
)

// DefaultPriority is used when a vhost sets no priority.
const DefaultPriority = 25

// VHost represents a virtual host and its declarations
type VHost struct {
	Name          string   `yaml:"name" toml:"name"`
	Port          int      `yaml:"port" toml:"port"`
	Priority      *int     `yaml:"priority,omitempty" toml:"priority,omitempty"`
	Addr          string   `yaml:"addr,omitempty" toml:"addr,omitempty"`
	ServerName    string   `yaml:"servername,omitempty" toml:"servername,omitempty"`
	ServerAdmin   string   `yaml:"serveradmin,omitempty" toml:"serveradmin,omitempty"`
	ServerAliases []string `yaml:"serveraliases,omitempty" toml:"serveraliases,omitempty"`
	DocRoot       string   `yaml:"docroot,omitempty" toml:"docroot,omitempty"`

	Proxies  []Proxy   `yaml:"proxies,omitempty" toml:"proxies,omitempty"`
	Aliases  []Alias   `yaml:"aliases,omitempty" toml:"aliases,omitempty"`
	Rewrites []Rewrite `yaml:"rewrites,omitempty" toml:"rewrites,omitempty"`
}

// Proxy is the file form of directive.Proxy. A nil group is unset; an
// empty list is declared but empty. Nil groups are never encoded.
type Proxy struct {
	Name          string                  `yaml:"name" toml:"name"`
	Order         *int                    `yaml:"order,omitempty" toml:"order,omitempty"`
	ProxyPass     *[]directive.ProxyEntry `yaml:"proxy_pass,omitempty" toml:"proxy_pass"`
	ProxyMatch    *[]directive.ProxyEntry `yaml:"proxy_match,omitempty" toml:"proxy_match"`
	ProxyDest     *[]directive.ProxyEntry `yaml:"proxy_dest,omitempty" toml:"proxy_dest"`
	ProxyRequests bool                    `yaml:"proxy_requests,omitempty" toml:"proxy_requests,omitempty"`
	PreserveHost  bool                    `yaml:"preserve_host,omitempty" toml:"preserve_host,omitempty"`
	ErrorOverride bool                    `yaml:"error_override,omitempty" toml:"error_override,omitempty"`
	AddHeaders    *bool                   `yaml:"add_headers,omitempty" toml:"add_headers,omitempty"`
}

// Alias is the file form of directive.Alias.
type Alias struct {
	Name          string                  `yaml:"name" toml:"name"`
	Order         *int                    `yaml:"order,omitempty" toml:"order,omitempty"`
	Aliases       *[]directive.AliasEntry `yaml:"aliases,omitempty" toml:"aliases"`
	AliasMatch    *[]directive.AliasEntry `yaml:"alias_match,omitempty" toml:"alias_match"`
	ScriptAliases *[]directive.AliasEntry `yaml:"script_aliases,omitempty" toml:"script_aliases"`
}

// Rewrite is the file form of directive.Rewrite.
type Rewrite struct {
	Name         string                    `yaml:"name" toml:"name"`
	Order        *int                      `yaml:"order,omitempty" toml:"order,omitempty"`
	Rewrites     *[]directive.RewriteEntry `yaml:"rewrites,omitempty" toml:"rewrites"`
	RewriteRules *[]string                 `yaml:"rewrite_rules,omitempty" toml:"rewrite_rules"`
}

// PriorityOrDefault returns the priority, DefaultPriority when unset.
func (v *VHost) PriorityOrDefault() int {
	if v.Priority != nil {
		return *v.Priority
	}
	return DefaultPriority
}

// ID returns the target identity without validating it.
func (v *VHost) ID() string {
	return target.Target{VHost: v.Name, Port: v.Port, Priority: v.PriorityOrDefault()}.ID()
}

// Target resolves the vhost's target.
func (v *VHost) Target() (target.Target, error) {
	return target.Resolve(v.Name, v.Port, v.PriorityOrDefault())
}

// Frame returns the vhost-level values rendered around the declarations.
func (v *VHost) Frame() directive.Frame {
	return directive.Frame{
		VHost:         v.Name,
		Addr:          v.Addr,
		Port:          v.Port,
		ServerName:    v.ServerName,
		ServerAdmin:   v.ServerAdmin,
		ServerAliases: v.ServerAliases,
		DocRoot:       v.DocRoot,
	}
}

// Declarations converts the file entries into declarations: proxies,
// then aliases, then rewrites, each in file order.
func (v *VHost) Declarations() []directive.Declaration {
	decls := make([]directive.Declaration, 0, len(v.Proxies)+len(v.Aliases)+len(v.Rewrites))
	for _, p := range v.Proxies {
		decls = append(decls, p.Declaration())
	}
	for _, a := range v.Aliases {
		decls = append(decls, a.Declaration())
	}
	for _, r := range v.Rewrites {
		decls = append(decls, r.Declaration())
	}
	return decls
}

// Assembly returns the assembler input for the vhost.
func (v *VHost) Assembly() assemble.VHost {
	return assemble.VHost{
		Name:         v.Name,
		Port:         v.Port,
		Priority:     v.PriorityOrDefault(),
		Frame:        v.Frame(),
		Declarations: v.Declarations(),
	}
}

// Declaration converts the entry into a directive.Proxy.
func (p Proxy) Declaration() *directive.Proxy {
	return &directive.Proxy{
		Source:        p.Name,
		OrderKey:      p.Order,
		Pass:          directive.Optional(p.ProxyPass),
		Match:         directive.Optional(p.ProxyMatch),
		Dest:          directive.Optional(p.ProxyDest),
		ProxyRequests: p.ProxyRequests,
		PreserveHost:  p.PreserveHost,
		ErrorOverride: p.ErrorOverride,
		AddHeaders:    p.AddHeaders,
	}
}

// Declaration converts the entry into a directive.Alias.
func (a Alias) Declaration() *directive.Alias {
	return &directive.Alias{
		Source:        a.Name,
		OrderKey:      a.Order,
		Aliases:       directive.Optional(a.Aliases),
		AliasMatch:    directive.Optional(a.AliasMatch),
		ScriptAliases: directive.Optional(a.ScriptAliases),
	}
}

// Declaration converts the entry into a directive.Rewrite.
func (r Rewrite) Declaration() *directive.Rewrite {
	return &directive.Rewrite{
		Source:   r.Name,
		OrderKey: r.Order,
		Rewrites: directive.Optional(r.Rewrites),
		Rules:    directive.Optional(r.RewriteRules),
	}
}

// Assembly returns the assembler input for every vhost, in file order.
func (c *Config) Assembly() []assemble.VHost {
	vhosts := make([]assemble.VHost, 0, len(c.VHosts))
	for _, v := range c.VHosts {
		vhosts = append(vhosts, v.Assembly())
	}
	return vhosts
}
