package cli

import (
	"strings"

	"github.com/ksyq12/vhostfrag/internal/config"
	"github.com/ksyq12/vhostfrag/internal/driver"
	"github.com/ksyq12/vhostfrag/internal/input"
	"github.com/ksyq12/vhostfrag/internal/platform"
)

// MockConfigLoader serves Cfg and records every Load path and Save call.
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	SaveErr   error
	LoadPaths []string
	SaveCalls int
}

func (m *MockConfigLoader) Load(path string) (*config.Config, error) {
	m.LoadPaths = append(m.LoadPaths, path)
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Save(cfg *config.Config) error {
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cfg = cfg
	return nil
}

// MockPlatformDetector reports Paths, or a Debian layout when Paths is nil.
type MockPlatformDetector struct {
	Paths *platform.PlatformPaths
	Err   error
}

func (m *MockPlatformDetector) DetectPaths() (*platform.PlatformPaths, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Paths != nil {
		return m.Paths, nil
	}
	return &platform.PlatformPaths{
		Apache: platform.PathConfig{
			Available: "/etc/apache2/sites-available",
			Enabled:   "/etc/apache2/sites-enabled",
		},
		Ctl:  "apache2ctl",
		Unit: "apache2.service",
	}, nil
}

// MockDriverFactory hands out Driver, or a fresh MockDriver on the
// requested paths when Driver is nil.
type MockDriverFactory struct {
	Driver driver.Driver
	Err    error

	// Opts holds the options of the last Create call.
	Opts driver.ApacheOptions
}

func (m *MockDriverFactory) Create(name string, opts driver.ApacheOptions) (driver.Driver, error) {
	m.Opts = opts
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Driver != nil {
		return m.Driver, nil
	}
	return driver.NewMockDriver(name, opts.Paths.Available, opts.Paths.Enabled), nil
}

// MockRootChecker fails RequireRoot with errRootRequired unless IsRoot.
type MockRootChecker struct {
	IsRoot bool
	Calls  int
}

func (m *MockRootChecker) RequireRoot() error {
	m.Calls++
	if !m.IsRoot {
		return errRootRequired
	}
	return nil
}

// stdinLines turns scripted input into the answers an input.StringReader
// hands out, one line per read.
func stdinLines(text string) *input.StringReader {
	var lines []string
	for _, line := range strings.SplitAfter(text, "\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return input.NewStringReader(lines...)
}

// MockDependenciesBuilder assembles Dependencies for tests.
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps starts from an empty config, a Debian layout, root access and a
// "y" answer on stdin.
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader:     &MockConfigLoader{Cfg: config.New()},
			PlatformDetector: &MockPlatformDetector{},
			DriverFactory:    &MockDriverFactory{},
			RootChecker:      &MockRootChecker{IsRoot: true},
			StdinReader:      stdinLines("y\n"),
		},
	}
}

// WithConfig serves cfg from a fresh MockConfigLoader.
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader replaces the config loader.
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithDriver makes the factory return drv.
func (b *MockDependenciesBuilder) WithDriver(drv driver.Driver) *MockDependenciesBuilder {
	b.deps.DriverFactory = &MockDriverFactory{Driver: drv}
	return b
}

// WithDriverFactory replaces the driver factory.
func (b *MockDependenciesBuilder) WithDriverFactory(factory DriverFactory) *MockDependenciesBuilder {
	b.deps.DriverFactory = factory
	return b
}

// WithPlatformPaths makes detection report paths.
func (b *MockDependenciesBuilder) WithPlatformPaths(paths *platform.PlatformPaths) *MockDependenciesBuilder {
	b.deps.PlatformDetector = &MockPlatformDetector{Paths: paths}
	return b
}

// WithPlatformError makes detection fail with err.
func (b *MockDependenciesBuilder) WithPlatformError(err error) *MockDependenciesBuilder {
	b.deps.PlatformDetector = &MockPlatformDetector{Err: err}
	return b
}

// Build returns the assembled Dependencies.
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}

// TestHelper installs mock dependencies around one CLI test: a MockDriver on
// temp directories and a MockConfigLoader the test fills in.
type TestHelper struct {
	T interface {
		Helper()
		Cleanup(func())
	}
	OldDeps    *Dependencies
	MockDriver *driver.MockDriver
	MockConfig *MockConfigLoader
}

// NewTestHelper swaps deps and the command flags for the duration of the
// test; both are restored by t.Cleanup.
func NewTestHelper(t interface {
	Helper()
	Cleanup(func())
}, availableDir, enabledDir string) *TestHelper {
	t.Helper()

	mockDriver := driver.NewMockDriver("apache", availableDir, enabledDir)
	mockConfig := &MockConfigLoader{Cfg: config.New()}

	helper := &TestHelper{
		T:          t,
		OldDeps:    deps,
		MockDriver: mockDriver,
		MockConfig: mockConfig,
	}

	mockDeps := NewMockDeps().
		WithDriver(mockDriver).
		WithConfigLoader(mockConfig).
		WithPlatformPaths(&platform.PlatformPaths{
			Apache: platform.PathConfig{Available: availableDir, Enabled: enabledDir},
			Ctl:    "apache2ctl",
		}).
		Build()

	deps = mockDeps

	oldFlags := [...]bool{jsonOutput, dryRun, noReload, forceRemove, keepConfig}
	jsonOutput, dryRun, noReload, forceRemove, keepConfig = false, false, false, false, false

	t.Cleanup(func() {
		deps = helper.OldDeps
		jsonOutput, dryRun, noReload, forceRemove, keepConfig = oldFlags[0], oldFlags[1], oldFlags[2], oldFlags[3], oldFlags[4]
	})

	return helper
}

// SetRootAccess toggles the root check.
func (h *TestHelper) SetRootAccess(isRoot bool) {
	deps.RootChecker = &MockRootChecker{IsRoot: isRoot}
}

// SetStdinInput scripts the answers read from stdin.
func (h *TestHelper) SetStdinInput(text string) {
	deps.StdinReader = stdinLines(text)
}

// GetConfig returns the config as last loaded or saved.
func (h *TestHelper) GetConfig() *config.Config {
	return h.MockConfig.Cfg
}
