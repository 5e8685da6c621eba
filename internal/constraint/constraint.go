// Package constraint enforces "at least one of" rules over the optional
// parameter groups of a declaration before anything is rendered.
package constraint

import (
	"fmt"

	"github.com/ksyq12/vhostfrag/internal/errors"
)

// Presence is the explicit state of one optional parameter group.
type Presence int

const (
	// Unset means the group was not declared at all.
	Unset Presence = iota
	// Empty means the group was declared with zero entries.
	Empty
	// Provided means the group has at least one entry.
	Provided
)

// String returns the presence name.
func (p Presence) String() string {
	switch p {
	case Unset:
		return "unset"
	case Empty:
		return "empty"
	case Provided:
		return "provided"
	default:
		return "unknown"
	}
}

// Group describes one recognized parameter group of a declaration.
type Group struct {
	Name     string
	Presence Presence
}

// Provided reports whether the group has entries.
func (g Group) Provided() bool {
	return g.Presence == Provided
}

// Policy decides how several provided groups in one declaration are treated.
type Policy string

const (
	// PolicyCombine renders every provided group.
	PolicyCombine Policy = "combine"
	// PolicyExclusive rejects declarations providing more than one group.
	PolicyExclusive Policy = "exclusive"
)

// ParsePolicy converts a configuration value into a Policy.
// An empty value selects PolicyCombine.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyCombine:
		return PolicyCombine, nil
	case PolicyExclusive:
		return PolicyExclusive, nil
	default:
		return "", errors.Validation(fmt.Sprintf("unknown group policy %q (valid: %s, %s)", s, PolicyCombine, PolicyExclusive))
	}
}

// Check validates the groups of the declaration named source.
// It fails with MISSING_GROUP when no group is provided, and with
// CONFLICTING_GROUPS when policy is exclusive and several are.
func Check(source string, groups []Group, policy Policy) error {
	provided := ProvidedNames(groups)

	if len(provided) == 0 {
		return errors.MissingGroup(source, Names(groups))
	}
	if policy == PolicyExclusive && len(provided) > 1 {
		return errors.ConflictingGroups(source, provided)
	}
	return nil
}

// Names returns the names of all groups in order.
func Names(groups []Group) []string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return names
}

// ProvidedNames returns the names of the provided groups in order.
func ProvidedNames(groups []Group) []string {
	var names []string
	for _, g := range groups {
		if g.Provided() {
			names = append(names, g.Name)
		}
	}
	return names
}
