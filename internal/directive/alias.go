package directive

import (
	"fmt"

	"github.com/ksyq12/vhostfrag/internal/constraint"
	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/template"
)

// Alias group names.
const (
	GroupAliases       = "aliases"
	GroupAliasMatch    = "alias_match"
	GroupScriptAliases = "script_aliases"
)

// AliasEntry maps a URL path to a filesystem path.
type AliasEntry struct {
	Alias string `yaml:"alias" toml:"alias"`
	Path  string `yaml:"path" toml:"path"`
}

// Alias declares Alias, AliasMatch and ScriptAlias directives.
type Alias struct {
	Source   string
	OrderKey *int

	Aliases       List[AliasEntry]
	AliasMatch    List[AliasEntry]
	ScriptAliases List[AliasEntry]
}

// Name returns the declaration's source name.
func (a *Alias) Name() string { return a.Source }

// Kind returns KindAlias.
func (a *Alias) Kind() Kind { return KindAlias }

// Order returns the ordering key, 20 unless overridden.
func (a *Alias) Order() int { return orderOr(a.OrderKey, OrderAlias) }

// Groups returns aliases, alias_match and script_aliases.
func (a *Alias) Groups() []constraint.Group {
	return []constraint.Group{
		a.Aliases.group(GroupAliases),
		a.AliasMatch.group(GroupAliasMatch),
		a.ScriptAliases.group(GroupScriptAliases),
	}
}

// Check requires alias and path on every entry, each on a single line.
func (a *Alias) Check() error {
	if err := checkName(a.Source); err != nil {
		return err
	}
	groups := []struct {
		name    string
		entries []AliasEntry
	}{
		{GroupAliases, a.Aliases.Entries},
		{GroupAliasMatch, a.AliasMatch.Entries},
		{GroupScriptAliases, a.ScriptAliases.Entries},
	}
	for _, g := range groups {
		for i, e := range g.entries {
			if e.Alias == "" {
				return errors.Invalid(a.Source, fmt.Sprintf("%s[%d]: alias is required", g.name, i))
			}
			if e.Path == "" {
				return errors.Invalid(a.Source, fmt.Sprintf("%s[%d]: path is required", g.name, i))
			}
			if err := checkLine(a.Source, fmt.Sprintf("%s[%d]: alias", g.name, i), e.Alias); err != nil {
				return err
			}
			if err := checkLine(a.Source, fmt.Sprintf("%s[%d]: path", g.name, i), e.Path); err != nil {
				return err
			}
		}
	}
	return nil
}

type aliasLine struct {
	Directive string
	Alias     string
	Path      string
}

// Render returns the alias declarations block.
func (a *Alias) Render() (string, error) {
	var lines []aliasLine
	add := func(directive string, entries []AliasEntry) {
		for _, e := range entries {
			lines = append(lines, aliasLine{Directive: directive, Alias: e.Alias, Path: e.Path})
		}
	}
	add("Alias", a.Aliases.Entries)
	add("AliasMatch", a.AliasMatch.Entries)
	add("ScriptAlias", a.ScriptAliases.Entries)

	return template.Render(template.Apache, "aliases", struct{ Aliases []aliasLine }{lines})
}
