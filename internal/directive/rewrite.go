package directive

import (
	"fmt"

	"github.com/ksyq12/vhostfrag/internal/constraint"
	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/template"
)

// Rewrite group names.
const (
	GroupRewrites     = "rewrites"
	GroupRewriteRules = "rewrite_rules"
)

// RewriteEntry is one commented block of conditions and rules.
type RewriteEntry struct {
	Comment string   `yaml:"comment,omitempty" toml:"comment,omitempty"`
	Base    string   `yaml:"rewrite_base,omitempty" toml:"rewrite_base,omitempty"`
	Conds   []string `yaml:"rewrite_cond,omitempty" toml:"rewrite_cond,omitempty"`
	Maps    []string `yaml:"rewrite_map,omitempty" toml:"rewrite_map,omitempty"`
	Rules   []string `yaml:"rewrite_rule" toml:"rewrite_rule"`
}

// Rewrite declares mod_rewrite blocks. Rules holds bare rules rendered after
// the blocks, without conditions.
type Rewrite struct {
	Source   string
	OrderKey *int

	Rewrites List[RewriteEntry]
	Rules    List[string]
}

// Name returns the declaration's source name.
func (r *Rewrite) Name() string { return r.Source }

// Kind returns KindRewrite.
func (r *Rewrite) Kind() Kind { return KindRewrite }

// Order returns the ordering key, 160 unless overridden.
func (r *Rewrite) Order() int { return orderOr(r.OrderKey, OrderRewrite) }

// Groups returns rewrites and rewrite_rules.
func (r *Rewrite) Groups() []constraint.Group {
	return []constraint.Group{
		r.Rewrites.group(GroupRewrites),
		r.Rules.group(GroupRewriteRules),
	}
}

// Check requires at least one rule per block and no empty bare rules.
// Every string must fit on one line.
func (r *Rewrite) Check() error {
	if err := checkName(r.Source); err != nil {
		return err
	}
	for i, e := range r.Rewrites.Entries {
		if len(e.Rules) == 0 {
			return errors.Invalid(r.Source, fmt.Sprintf("%s[%d]: rewrite_rule is required", GroupRewrites, i))
		}
		fields := []struct {
			name   string
			values []string
		}{
			{"comment", []string{e.Comment}},
			{"rewrite_base", []string{e.Base}},
			{"rewrite_cond", e.Conds},
			{"rewrite_map", e.Maps},
			{"rewrite_rule", e.Rules},
		}
		for _, f := range fields {
			if err := checkLine(r.Source, fmt.Sprintf("%s[%d]: %s", GroupRewrites, i, f.name), f.values...); err != nil {
				return err
			}
		}
	}
	for i, rule := range r.Rules.Entries {
		if rule == "" {
			return errors.Invalid(r.Source, fmt.Sprintf("%s[%d]: rule cannot be empty", GroupRewriteRules, i))
		}
		if err := checkLine(r.Source, fmt.Sprintf("%s[%d]: rule", GroupRewriteRules, i), rule); err != nil {
			return err
		}
	}
	return nil
}

// Render returns the "## Rewrite rules" block.
func (r *Rewrite) Render() (string, error) {
	blocks := append([]RewriteEntry(nil), r.Rewrites.Entries...)
	if len(r.Rules.Entries) > 0 {
		blocks = append(blocks, RewriteEntry{Rules: r.Rules.Entries})
	}
	return template.Render(template.Apache, "rewrite", struct{ Blocks []RewriteEntry }{blocks})
}
