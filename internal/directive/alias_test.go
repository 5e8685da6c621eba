package directive

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ksyq12/vhostfrag/internal/constraint"
	"github.com/ksyq12/vhostfrag/internal/errors"
)

func TestAliasRender(t *testing.T) {
	a := &Alias{
		Source:        "static",
		Aliases:       Of(AliasEntry{Alias: "/images", Path: "/var/www/images"}),
		ScriptAliases: Of(AliasEntry{Alias: "/cgi-bin", Path: "/usr/lib/cgi-bin"}),
	}

	if err := a.Check(); err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	got, err := a.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := "  ## Alias declarations for ordering critical\n" +
		"  Alias /images \"/var/www/images\"\n" +
		"  ScriptAlias /cgi-bin \"/usr/lib/cgi-bin\"\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("render mismatch (-want +got):\n%s", diff)
	}
	if a.Order() != OrderAlias || Label("site", a) != "site-static-alias" {
		t.Errorf("unexpected order/label: %d %s", a.Order(), Label("site", a))
	}
}

func TestAliasMissingGroups(t *testing.T) {
	a := &Alias{Source: "empty"}
	err := constraint.Check(a.Name(), a.Groups(), constraint.PolicyCombine)
	if !errors.Is(err, errors.ErrMissingGroup) {
		t.Fatalf("expected MISSING_GROUP, got %v", err)
	}
	want := "empty: At least one of aliases, alias_match, script_aliases must be set"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAliasCheck(t *testing.T) {
	tests := []struct {
		name  string
		alias *Alias
	}{
		{"missing path", &Alias{Source: "a", AliasMatch: Of(AliasEntry{Alias: "^/x"})}},
		{"empty name", &Alias{Aliases: Of(AliasEntry{Alias: "/x", Path: "/y"})}},
		{"name with whitespace", &Alias{Source: "a\tb", Aliases: Of(AliasEntry{Alias: "/x", Path: "/y"})}},
		{"alias with newline", &Alias{Source: "a", Aliases: Of(AliasEntry{Alias: "/x\nInclude /etc/passwd", Path: "/y"})}},
		{"path with carriage return", &Alias{Source: "a", ScriptAliases: Of(AliasEntry{Alias: "/cgi", Path: "/y\r"})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.alias.Check()
			if !errors.Is(err, errors.ErrInvalidDeclaration) {
				t.Errorf("expected VALIDATION error, got %v", err)
			}
		})
	}
}
