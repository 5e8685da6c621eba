// Package directive defines the declaration kinds that render into Apache
// vhost fragments: proxy rules, aliases, and rewrites, plus the vhost frame
// (header, docroot, footer) every target file is wrapped in.
//
// A declaration is checked in two steps before it is rendered. First its
// parameter groups go through constraint.Check, then Check verifies the
// required fields of each entry. Render is only called when both pass, so a
// group with zero entries never reaches a template.
package directive

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ksyq12/vhostfrag/internal/constraint"
	"github.com/ksyq12/vhostfrag/internal/errors"
)

// Kind names a declaration kind. It is the last element of a fragment label.
type Kind string

// Declaration kinds.
const (
	KindProxy   Kind = "proxy"
	KindAlias   Kind = "alias"
	KindRewrite Kind = "rewrite"
)

// Ordering keys of the fragments in one vhost file.
const (
	OrderHeader  = 0
	OrderDocRoot = 10
	OrderAlias   = 20
	OrderRewrite = 160
	OrderProxy   = 170
	OrderFooter  = 999
)

// Declaration is one caller-supplied configuration unit.
type Declaration interface {
	// Name returns the source name used in labels and error messages.
	Name() string

	// Kind returns the declaration kind.
	Kind() Kind

	// Order returns the ordering key of the rendered fragment.
	Order() int

	// Groups returns the recognized parameter groups in render order.
	Groups() []constraint.Group

	// Check validates required fields of every provided entry.
	Check() error

	// Render returns the directive text.
	Render() (string, error)
}

// Label returns the fragment source label "{vhost}-{name}-{kind}".
func Label(vhost string, d Declaration) string {
	return vhost + "-" + d.Name() + "-" + string(d.Kind())
}

// checkName rejects names that cannot be part of a fragment label. Labels
// become fragment file names, so separators and ".." are refused.
func checkName(name string) error {
	switch {
	case name == "":
		return errors.Invalid(name, "name cannot be empty")
	case strings.ContainsAny(name, "/\\") || strings.Contains(name, ".."):
		return errors.Invalid(name, fmt.Sprintf("name %q cannot contain path separators or ..", name))
	case strings.IndexFunc(name, unicode.IsSpace) >= 0:
		return errors.Invalid(name, fmt.Sprintf("name %q cannot contain whitespace", name))
	}
	return nil
}

// checkLine rejects values that would split a directive over several lines.
func checkLine(source, field string, values ...string) error {
	for _, v := range values {
		if strings.ContainsAny(v, "\r\n") {
			return errors.Invalid(source, fmt.Sprintf("%s must be a single line", field))
		}
	}
	return nil
}

// List is an optional parameter group. The zero value is unset.
type List[E any] struct {
	Set     bool
	Entries []E
}

// Of returns a set group holding entries. Of() with no entries is set but empty.
func Of[E any](entries ...E) List[E] {
	return List[E]{Set: true, Entries: entries}
}

// Optional converts a decoded pointer field into a group; nil means unset.
func Optional[E any](entries *[]E) List[E] {
	if entries == nil {
		return List[E]{}
	}
	return List[E]{Set: true, Entries: *entries}
}

// Presence reports the group state.
func (l List[E]) Presence() constraint.Presence {
	switch {
	case !l.Set:
		return constraint.Unset
	case len(l.Entries) == 0:
		return constraint.Empty
	default:
		return constraint.Provided
	}
}

func (l List[E]) group(name string) constraint.Group {
	return constraint.Group{Name: name, Presence: l.Presence()}
}

// orderOr returns *key when set, else def.
func orderOr(key *int, def int) int {
	if key != nil {
		return *key
	}
	return def
}
