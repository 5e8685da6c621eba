package driver

import (
	"context"
	"fmt"

	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/fragment"
)

// Output modes.
const (
	// ModeFile writes one {id}.conf per target.
	ModeFile = "file"
	// ModeFragments also keeps every fragment under {id}.conf.d/.
	ModeFragments = "fragments"
)

// Driver is the interface that web server drivers must implement.
// Targets are addressed by their identity string, e.g. "15-default-80".
type Driver interface {
	// Name returns the driver name (apache)
	Name() string

	// Write replaces the configuration of an assembled target
	Write(out fragment.Output) error

	// Read returns the current configuration text of a target
	Read(id string) (string, error)

	// Snapshot captures a target's files so a failed apply can be undone
	Snapshot(id string) (*Snapshot, error)

	// Restore puts a target's files back as captured
	Restore(s *Snapshot) error

	// Remove deletes a target's configuration
	Remove(id string) error

	// Enable activates a target
	Enable(id string) error

	// Disable deactivates a target
	Disable(id string) error

	// List returns all target identities found in the available directory
	List() ([]string, error)

	// IsEnabled checks if a target is enabled
	IsEnabled(id string) (bool, error)

	// Test validates the web server config syntax
	Test(ctx context.Context) error

	// Reload reloads the web server
	Reload(ctx context.Context) error

	// Paths returns the driver's config paths
	Paths() Paths
}

// Paths contains the web server config directory paths
type Paths struct {
	Available string // config available directory
	Enabled   string // config enabled directory
}

// Snapshot holds the files of one target before a change.
type Snapshot struct {
	ID string

	// File is the target file content; nil when the file did not exist.
	File []byte

	// Fragments maps fragment file names to content; nil when the fragment
	// directory did not exist.
	Fragments map[string][]byte
}

// New creates the driver called name.
func New(name string, opts ApacheOptions) (Driver, error) {
	switch name {
	case "apache":
		return NewApache(opts), nil
	default:
		return nil, errors.Wrap(errors.ErrCodeDriver, fmt.Sprintf("driver %s not found (available: apache)", name), nil)
	}
}
