// Package fragment collects rendered fragments per target and assembles each
// target's fragments into one ordered configuration file body.
//
// A Registry belongs to exactly one assembly run. Fragments are sorted by
// (Order, Seq) where Seq is the submission sequence number, so the output of
// Flush depends only on the set of fragments and the numbers they carry, not
// on the order in which different targets were fed.
//
//	reg := fragment.NewRegistry()
//	if err := reg.Intake(tgt, 170, "default-myproxy-proxy", text); err != nil {
//	    return err
//	}
//	outputs, err := reg.Flush()
//
// A Registry is not safe for concurrent use. Concurrent runs each use their own.
package fragment

import (
	"fmt"
	"strings"

	"github.com/ksyq12/vhostfrag/internal/target"
)

// Fragment is one ordered unit of rendered text belonging to a target.
type Fragment struct {
	Target target.Target
	Order  int
	Seq    int
	Source string
	Text   string
}

// Name returns the fragment file name stem "{order}_{source}" with the order
// zero padded to four digits.
func (f Fragment) Name() string {
	return fmt.Sprintf("%04d_%s", f.Order, f.Source)
}

// normalize ends text in exactly one newline.
func normalize(text string) string {
	return strings.TrimRight(text, "\n") + "\n"
}

// less orders by Order, then Seq; Source breaks ties between replayed fragments.
func less(a, b Fragment) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if a.Seq != b.Seq {
		return a.Seq < b.Seq
	}
	return a.Source < b.Source
}

// Output is the assembled file body of one target.
type Output struct {
	Target    target.Target
	Fragments []Fragment
	Text      string
}

// ByID indexes outputs by target identity.
func ByID(outputs []Output) map[string]Output {
	m := make(map[string]Output, len(outputs))
	for _, o := range outputs {
		m[o.Target.ID()] = o
	}
	return m
}

// concat joins fragment texts with one blank line between fragments.
func concat(frags []Fragment) string {
	parts := make([]string, len(frags))
	for i, f := range frags {
		parts[i] = f.Text
	}
	return strings.Join(parts, "\n")
}
