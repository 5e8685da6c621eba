package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/ksyq12/vhostfrag/internal/assemble"
	"github.com/ksyq12/vhostfrag/internal/config"
	"github.com/ksyq12/vhostfrag/internal/driver"
	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/fragment"
	"github.com/ksyq12/vhostfrag/internal/logger"
	"github.com/ksyq12/vhostfrag/internal/output"
	"github.com/ksyq12/vhostfrag/internal/platform"
	"github.com/spf13/cobra"
)

var targetID = regexp.MustCompile(`^-?\d+-\S+-\d+$`)

// loadConfig loads the declaration file and applies its log level unless
// --verbose already raised it.
func loadConfig() (*config.Config, error) {
	cfg, err := deps.ConfigLoader.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.LogLevel != "" && !verbose {
		level, err := logger.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeConfig, "invalid log_level", err)
		}
		logger.SetLevel(level)
	}
	return cfg, nil
}

// loadConfigAndDriver loads config and returns the appropriate driver.
// Paths set in the config override the detected ones.
func loadConfigAndDriver() (*config.Config, driver.Driver, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	opts := driver.ApacheOptions{Mode: cfg.Mode, Unit: cfg.Unit}
	detected, detectErr := deps.PlatformDetector.DetectPaths()
	if detected != nil {
		if pc, err := detected.GetPathsForDriver(cfg.Driver); err == nil {
			opts.Paths = driver.Paths{Available: pc.Available, Enabled: pc.Enabled}
		}
		opts.Ctl = detected.Ctl
		if opts.Unit == "" {
			opts.Unit = detected.Unit
		}
	}
	if cfg.Paths.Available != "" {
		opts.Paths.Available = cfg.Paths.Available
	}
	if cfg.Paths.Enabled != "" {
		opts.Paths.Enabled = cfg.Paths.Enabled
	}
	if opts.Paths.Available == "" || opts.Paths.Enabled == "" {
		return nil, nil, fmt.Errorf("failed to detect apache paths on %s (set paths.available and paths.enabled): %w", platform.Platform(), detectErr)
	}

	drv, err := deps.DriverFactory.Create(cfg.Driver, opts)
	if err != nil {
		return nil, nil, err
	}

	logger.Debug("driver %s: available=%s enabled=%s mode=%s",
		drv.Name(), opts.Paths.Available, opts.Paths.Enabled, opts.Mode)
	return cfg, drv, nil
}

// assembleConfig runs every vhost of cfg through the assembler. Outputs of
// healthy targets are returned alongside the joined failures of the others.
func assembleConfig(ctx context.Context, cfg *config.Config) ([]fragment.Output, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	a := assemble.New(assemble.Options{Policy: policy, Jobs: cfg.Jobs})
	if cfg.Jobs == 1 {
		return a.Run(cfg.Assembly())
	}
	return a.RunParallel(ctx, cfg.Assembly())
}

// selectOutputs keeps the outputs named in ids, in the order of outputs.
// Every id must be a declared target.
func selectOutputs(cfg *config.Config, outputs []fragment.Output, ids []string) ([]fragment.Output, error) {
	if len(ids) == 0 {
		return outputs, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if err := validateTarget(id); err != nil {
			return nil, err
		}
		if _, err := cfg.FindVHost(id); err != nil {
			return nil, err
		}
		want[id] = true
	}

	var selected []fragment.Output
	for _, out := range outputs {
		if want[out.Target.ID()] {
			selected = append(selected, out)
		}
	}
	return selected, nil
}

// failuresFor keeps the failures attributed to ids, all of them when ids is empty.
func failuresFor(err error, ids []string) []error {
	failures := splitErrors(err)
	if len(ids) == 0 {
		return failures
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var kept []error
	for _, f := range failures {
		var vhostErr *errors.VHostError
		if !errors.As(f, &vhostErr) || vhostErr.Target == "" || want[vhostErr.Target] {
			kept = append(kept, f)
		}
	}
	return kept
}

// splitErrors flattens joined errors into their leaves.
func splitErrors(err error) []error {
	if err == nil {
		return nil
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}
	var leaves []error
	for _, e := range joined.Unwrap() {
		leaves = append(leaves, splitErrors(e)...)
	}
	return leaves
}

// testAndReload tests config and reloads the web server
// If rollback is provided, it will be called on test failure
func testAndReload(ctx context.Context, drv driver.Driver, reload bool, rollback func() error) error {
	s := output.StartSpinner("Testing configuration...")
	err := drv.Test(ctx)
	s.Stop()
	if err != nil {
		if rollback != nil {
			if rbErr := rollback(); rbErr != nil {
				output.Warn("Rollback failed: %v", rbErr)
			}
		}
		return fmt.Errorf("configuration test failed: %w", err)
	}

	if reload {
		s := output.StartSpinner("Reloading %s...", drv.Name())
		err := drv.Reload(ctx)
		s.Stop()
		if err != nil {
			return fmt.Errorf("failed to reload %s: %w", drv.Name(), err)
		}
	}

	return nil
}

// saveConfig saves the config and returns error instead of just warning
func saveConfig(cfg *config.Config) error {
	if err := deps.ConfigLoader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// requireRoot fails unless the process may write the server configuration.
func requireRoot() error {
	return deps.RootChecker.RequireRoot()
}

// commandContext returns the command's context, Background for direct calls.
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}

// progress prints a step message unless --json owns stdout.
func progress(format string, args ...interface{}) {
	if !jsonOutput {
		output.Info(format, args...)
	}
}

// promptWriter is where confirmation prompts go; stderr when --json owns stdout.
func promptWriter() io.Writer {
	if jsonOutput {
		return os.Stderr
	}
	return os.Stdout
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// validateTarget checks that id looks like "{priority}-{vhost}-{port}".
func validateTarget(id string) error {
	if id == "" {
		return errors.Validation("target cannot be empty")
	}
	if strings.ContainsAny(id, "/\\") {
		return errors.Validation(fmt.Sprintf("target %q cannot contain path separators", id))
	}
	if strings.HasSuffix(id, ".conf") {
		return errors.Validation(fmt.Sprintf("target %q: drop the .conf suffix", id))
	}
	if !targetID.MatchString(id) {
		return errors.Validation(fmt.Sprintf("target %q must look like {priority}-{vhost}-{port}", id))
	}
	return nil
}

// CommandResult represents a common result structure for CLI commands
type CommandResult struct {
	Success bool   `json:"success"`
	Target  string `json:"target"`
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
}

// newSuccessResult creates a success result
func newSuccessResult(target, action string) CommandResult {
	return CommandResult{
		Success: true,
		Target:  target,
		Action:  action,
	}
}

// errRootRequired is the sentinel error for root privilege check
var errRootRequired = errors.Wrap(errors.ErrCodePermission, "this operation requires root privileges. Please run with sudo", nil)
