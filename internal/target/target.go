// Package target resolves vhost parameters into the identity of one output
// configuration file.
//
// A Target is both the key fragments are aggregated under and the stem of the
// emitted file name: priority 15, vhost "default", port 80 becomes
// "15-default-80" and is written as "15-default-80.conf".
package target

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/ksyq12/vhostfrag/internal/errors"
)

// DefaultVHost is the reserved name of the server's default vhost.
const DefaultVHost = "default"

// Valid TCP port range.
const (
	MinPort = 1
	MaxPort = 65535
)

// Target identifies one output configuration file.
type Target struct {
	VHost    string
	Port     int
	Priority int
}

// Resolve validates vhost parameters and returns their Target.
// Priority is not range checked; it only orders files relative to each other.
func Resolve(vhost string, port, priority int) (Target, error) {
	label := fmt.Sprintf("%d-%s-%d", priority, vhost, port)

	if vhost == "" {
		return Target{}, errors.InvalidTarget(label, "vhost name cannot be empty")
	}
	if strings.ContainsRune(vhost, '/') || strings.IndexFunc(vhost, unicode.IsSpace) >= 0 {
		return Target{}, errors.InvalidTarget(label, fmt.Sprintf("vhost name %q cannot contain '/' or whitespace", vhost))
	}
	if port < MinPort || port > MaxPort {
		return Target{}, errors.InvalidTarget(label, fmt.Sprintf("port %d out of range %d-%d", port, MinPort, MaxPort))
	}

	return Target{VHost: vhost, Port: port, Priority: priority}, nil
}

// ID returns the identity string "{priority}-{vhost}-{port}".
func (t Target) ID() string {
	return fmt.Sprintf("%d-%s-%d", t.Priority, t.VHost, t.Port)
}

// FileName returns the configuration file name for the target.
func (t Target) FileName() string {
	return t.ID() + ".conf"
}

// String implements fmt.Stringer.
func (t Target) String() string {
	return t.ID()
}

// Less orders targets by priority, then vhost name, then port.
func (t Target) Less(o Target) bool {
	if t.Priority != o.Priority {
		return t.Priority < o.Priority
	}
	if t.VHost != o.VHost {
		return t.VHost < o.VHost
	}
	return t.Port < o.Port
}

// Sort orders targets in place using Less.
func Sort(targets []Target) {
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].Less(targets[j])
	})
}
