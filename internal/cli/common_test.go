package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ksyq12/vhostfrag/internal/config"
	"github.com/ksyq12/vhostfrag/internal/driver"
	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/platform"
)

func TestValidateTarget(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"default target", "15-default-80", false},
		{"dotted vhost", "25-example.com-443", false},
		{"hyphenated vhost", "25-my-site-8080", false},
		{"negative priority", "-5-early-80", false},
		{"empty", "", true},
		{"with conf suffix", "15-default-80.conf", true},
		{"path traversal", "../15-default-80", true},
		{"missing port", "15-default", true},
		{"spaces", "15-my site-80", true},
		{"vhost name only", "default", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTarget(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateTarget(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrInvalidDeclaration) {
				t.Errorf("expected VALIDATION code, got %v", errors.CodeOf(err))
			}
		})
	}
}

func TestNewSuccessResult(t *testing.T) {
	result := newSuccessResult("15-default-80", "enable")
	if !result.Success || result.Target != "15-default-80" || result.Action != "enable" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestLoadConfigAndDriver(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(cfg *config.Config) *Dependencies
		wantErr     bool
		errContains string
		validate    func(t *testing.T, factory *MockDriverFactory)
	}{
		{
			name: "detected paths",
			setup: func(cfg *config.Config) *Dependencies {
				return NewMockDeps().WithConfig(cfg).Build()
			},
			validate: func(t *testing.T, factory *MockDriverFactory) {
				if factory.Opts.Paths.Available != "/etc/apache2/sites-available" {
					t.Errorf("Available = %s", factory.Opts.Paths.Available)
				}
				if factory.Opts.Ctl != "apache2ctl" || factory.Opts.Unit != "apache2.service" {
					t.Errorf("Ctl/Unit = %s/%s", factory.Opts.Ctl, factory.Opts.Unit)
				}
				if factory.Opts.Mode != config.ModeFile {
					t.Errorf("Mode = %s", factory.Opts.Mode)
				}
			},
		},
		{
			name: "config overrides detection",
			setup: func(cfg *config.Config) *Dependencies {
				cfg.Paths = config.Paths{Available: "/srv/avail", Enabled: "/srv/enabled"}
				cfg.Unit = "httpd.service"
				cfg.Mode = config.ModeFragments
				return NewMockDeps().WithConfig(cfg).Build()
			},
			validate: func(t *testing.T, factory *MockDriverFactory) {
				want := driver.Paths{Available: "/srv/avail", Enabled: "/srv/enabled"}
				if factory.Opts.Paths != want {
					t.Errorf("Paths = %+v, want %+v", factory.Opts.Paths, want)
				}
				if factory.Opts.Unit != "httpd.service" || factory.Opts.Mode != config.ModeFragments {
					t.Errorf("Unit/Mode = %s/%s", factory.Opts.Unit, factory.Opts.Mode)
				}
			},
		},
		{
			name: "detection fails without overrides",
			setup: func(cfg *config.Config) *Dependencies {
				return NewMockDeps().WithConfig(cfg).WithPlatformError(fmt.Errorf("unsupported platform")).Build()
			},
			wantErr:     true,
			errContains: "unsupported platform",
		},
		{
			name: "detection fails with overrides",
			setup: func(cfg *config.Config) *Dependencies {
				cfg.Paths = config.Paths{Available: "/srv/avail", Enabled: "/srv/avail"}
				return NewMockDeps().WithConfig(cfg).WithPlatformError(fmt.Errorf("unsupported platform")).Build()
			},
		},
		{
			name: "config load error",
			setup: func(cfg *config.Config) *Dependencies {
				return NewMockDeps().WithConfigLoader(&MockConfigLoader{LoadErr: fmt.Errorf("bad yaml")}).Build()
			},
			wantErr:     true,
			errContains: "failed to load config",
		},
		{
			name: "driver error",
			setup: func(cfg *config.Config) *Dependencies {
				return NewMockDeps().WithConfig(cfg).
					WithDriverFactory(&MockDriverFactory{Err: fmt.Errorf("driver nginx not found")}).Build()
			},
			wantErr:     true,
			errContains: "driver nginx not found",
		},
		{
			name: "invalid log level",
			setup: func(cfg *config.Config) *Dependencies {
				cfg.LogLevel = "chatty"
				return NewMockDeps().WithConfig(cfg).Build()
			},
			wantErr:     true,
			errContains: "log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldDeps := deps
			deps = tt.setup(config.New())
			defer func() { deps = oldDeps }()

			_, drv, err := loadConfigAndDriver()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if drv.Name() != "apache" {
				t.Errorf("driver = %s", drv.Name())
			}
			if tt.validate != nil {
				tt.validate(t, deps.DriverFactory.(*MockDriverFactory))
			}
		})
	}
}

func TestLoadConfigPassesPath(t *testing.T) {
	loader := &MockConfigLoader{}
	oldDeps, oldPath := deps, configPath
	deps = NewMockDeps().WithConfigLoader(loader).Build()
	configPath = "/tmp/vhosts.toml"
	defer func() { deps, configPath = oldDeps, oldPath }()

	if _, err := loadConfig(); err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	if len(loader.LoadPaths) != 1 || loader.LoadPaths[0] != "/tmp/vhosts.toml" {
		t.Errorf("LoadPaths = %v", loader.LoadPaths)
	}
}

func TestAssembleConfig(t *testing.T) {
	for _, jobs := range []int{0, 1, 4} {
		t.Run(fmt.Sprintf("jobs=%d", jobs), func(t *testing.T) {
			cfg := mustParse(t, brokenYAML)
			cfg.Jobs = jobs

			outputs, err := assembleConfig(context.Background(), cfg)
			if !errors.Is(err, errors.ErrMissingGroup) {
				t.Fatalf("expected MISSING_GROUP, got %v", err)
			}
			if len(outputs) != 2 {
				t.Fatalf("expected 2 healthy outputs, got %d", len(outputs))
			}
			if outputs[0].Target.ID() != "15-default-80" || outputs[1].Target.ID() != "25-example.com-443" {
				t.Errorf("outputs out of order: %s, %s", outputs[0].Target.ID(), outputs[1].Target.ID())
			}
		})
	}
}

func TestSelectOutputs(t *testing.T) {
	cfg := mustParse(t, healthyYAML)
	outputs, err := assembleConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}

	all, err := selectOutputs(cfg, outputs, nil)
	if err != nil || len(all) != 2 {
		t.Errorf("no ids should select all, got %d (%v)", len(all), err)
	}

	one, err := selectOutputs(cfg, outputs, []string{"25-example.com-443"})
	if err != nil || len(one) != 1 || one[0].Target.ID() != "25-example.com-443" {
		t.Errorf("unexpected selection: %+v (%v)", one, err)
	}

	if _, err := selectOutputs(cfg, outputs, []string{"99-nowhere-80"}); !errors.Is(err, errors.ErrTargetNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestFailuresFor(t *testing.T) {
	joined := errors.Join(
		errors.Join(errors.WrapTarget(errors.ErrCodeMissingGroup, "25-broken-8080", errors.MissingGroup("api", nil))),
		errors.InvalidTarget("bad-70000", "port out of range"),
	)

	if got := failuresFor(joined, nil); len(got) != 2 {
		t.Errorf("expected 2 leaves, got %d", len(got))
	}
	if got := failuresFor(joined, []string{"25-broken-8080"}); len(got) != 1 {
		t.Errorf("expected 1 failure for 25-broken-8080, got %d", len(got))
	}
	if got := failuresFor(joined, []string{"15-default-80"}); len(got) != 0 {
		t.Errorf("expected no failures for 15-default-80, got %v", got)
	}
	if got := failuresFor(nil, nil); got != nil {
		t.Errorf("nil error should have no failures, got %v", got)
	}
}

func TestTestAndReload(t *testing.T) {
	tests := []struct {
		name         string
		testErr      error
		reloadErr    error
		reload       bool
		wantErr      string
		wantRollback bool
		wantReloads  int
	}{
		{name: "test and reload", reload: true, wantReloads: 1},
		{name: "no reload", reload: false},
		{name: "test fails", testErr: fmt.Errorf("syntax error"), reload: true, wantErr: "configuration test failed", wantRollback: true},
		{name: "reload fails", reloadErr: fmt.Errorf("unit not found"), reload: true, wantErr: "failed to reload apache", wantReloads: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockDrv := driver.NewMockDriver("apache", "/a", "/e")
			mockDrv.TestFunc = func() error { return tt.testErr }
			mockDrv.ReloadFunc = func() error { return tt.reloadErr }

			rolledBack := false
			err := testAndReload(context.Background(), mockDrv, tt.reload, func() error {
				rolledBack = true
				return nil
			})

			if tt.wantErr == "" && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)) {
				t.Fatalf("error = %v, want %q", err, tt.wantErr)
			}
			if rolledBack != tt.wantRollback {
				t.Errorf("rollback = %v, want %v", rolledBack, tt.wantRollback)
			}
			if mockDrv.ReloadCalls != tt.wantReloads {
				t.Errorf("ReloadCalls = %d, want %d", mockDrv.ReloadCalls, tt.wantReloads)
			}
		})
	}
}

func TestRealDriverFactory(t *testing.T) {
	factory := &realDriverFactory{}

	drv, err := factory.Create("apache", driver.ApacheOptions{
		Paths: driver.Paths{Available: t.TempDir(), Enabled: t.TempDir()},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if drv.Name() != "apache" {
		t.Errorf("Name() = %s", drv.Name())
	}

	if _, err := factory.Create("nginx", driver.ApacheOptions{}); errors.CodeOf(err) != errors.ErrCodeDriver {
		t.Errorf("expected DRIVER error, got %v", err)
	}
}

func TestMockPlatformDefaults(t *testing.T) {
	paths, err := (&MockPlatformDetector{}).DetectPaths()
	if err != nil {
		t.Fatalf("DetectPaths failed: %v", err)
	}
	if paths.Apache.SharedDir() {
		t.Error("default mock layout should use separate directories")
	}
	var _ PlatformDetector = &MockPlatformDetector{Paths: &platform.PlatformPaths{}}
}
