package cli

import (
	"os"

	"github.com/ksyq12/vhostfrag/internal/config"
	"github.com/ksyq12/vhostfrag/internal/driver"
	"github.com/ksyq12/vhostfrag/internal/input"
	"github.com/ksyq12/vhostfrag/internal/platform"
	"github.com/ksyq12/vhostfrag/internal/systemd"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader     ConfigLoader
	PlatformDetector PlatformDetector
	DriverFactory    DriverFactory
	RootChecker      RootChecker
	StdinReader      input.Reader
}

// ConfigLoader handles configuration loading and saving
type ConfigLoader interface {
	Load(path string) (*config.Config, error)
	Save(cfg *config.Config) error
}

// PlatformDetector handles platform path detection
type PlatformDetector interface {
	DetectPaths() (*platform.PlatformPaths, error)
}

// DriverFactory creates driver instances
type DriverFactory interface {
	Create(name string, opts driver.ApacheOptions) (driver.Driver, error)
}

// RootChecker checks root privileges
type RootChecker interface {
	RequireRoot() error
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:     &realConfigLoader{},
	PlatformDetector: &realPlatformDetector{},
	DriverFactory:    &realDriverFactory{},
	RootChecker:      &realRootChecker{},
	StdinReader:      &realStdinReader{},
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load(path string) (*config.Config, error) {
	return config.Load(path)
}

func (r *realConfigLoader) Save(cfg *config.Config) error {
	return cfg.Save()
}

type realPlatformDetector struct{}

func (r *realPlatformDetector) DetectPaths() (*platform.PlatformPaths, error) {
	return platform.DetectPaths()
}

type realDriverFactory struct{}

func (r *realDriverFactory) Create(name string, opts driver.ApacheOptions) (driver.Driver, error) {
	if opts.Reloader == nil && opts.Unit != "" {
		opts.Reloader = systemd.NewDBusReloader()
	}
	return driver.New(name, opts)
}

type realRootChecker struct{}

func (r *realRootChecker) RequireRoot() error {
	if os.Geteuid() != 0 {
		return errRootRequired
	}
	return nil
}

// realStdinReader opens stdin lazily so tests never touch it.
type realStdinReader struct {
	reader *input.StdinReader
}

func (r *realStdinReader) ReadString(delim byte) (string, error) {
	if r.reader == nil {
		r.reader = input.NewStdinReader()
	}
	return r.reader.ReadString(delim)
}
