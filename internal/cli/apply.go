package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ksyq12/vhostfrag/internal/driver"
	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/fragment"
	"github.com/ksyq12/vhostfrag/internal/logger"
	"github.com/ksyq12/vhostfrag/internal/output"
	"github.com/spf13/cobra"
)

var noReload bool

var applyCmd = &cobra.Command{
	Use:   "apply [target...]",
	Short: "Write assembled targets and reload Apache",
	Long: `Assemble the declared vhosts, write every changed target file, enable new
targets, test the Apache configuration and reload the server.

When the configuration test fails every written file is restored and newly
enabled targets are disabled again. Targets that fail to assemble are reported
and skipped; the others are still applied.

Examples:
  vhostfrag apply
  vhostfrag apply 15-default-80
  vhostfrag apply --dry-run
  vhostfrag apply --no-reload`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")
	applyCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload web server")

	rootCmd.AddCommand(applyCmd)
}

// applyPlan is the pending change for one target.
type applyPlan struct {
	out     fragment.Output
	exists  bool
	current string
	enabled bool
}

func (p applyPlan) id() string {
	return p.out.Target.ID()
}

func (p applyPlan) changed() bool {
	return !p.exists || p.current != p.out.Text
}

// ApplyChange reports what apply did to one target.
type ApplyChange struct {
	Target  string `json:"target"`
	Written bool   `json:"written"`
	Enabled bool   `json:"enabled"`
}

// ApplyResult is apply's JSON output.
type ApplyResult struct {
	Success   bool          `json:"success"`
	Changes   []ApplyChange `json:"changes"`
	Unchanged []string      `json:"unchanged"`
	Failures  []string      `json:"failures,omitempty"`
	Reloaded  bool          `json:"reloaded"`
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	cfg, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	outputs, runErr := assembleConfig(ctx, cfg)
	selected, err := selectOutputs(cfg, outputs, args)
	if err != nil {
		return err
	}
	failures := failuresFor(runErr, args)

	plans, err := planApply(drv, selected)
	if err != nil {
		return err
	}

	if dryRun {
		results := make([]*DryRunResult, 0, len(plans))
		for _, p := range plans {
			results = append(results, applyDryRun(drv, p))
		}
		if err := outputDryRun(results...); err != nil {
			return err
		}
		return failureError(failures)
	}

	// Require root for system operations
	if err := requireRoot(); err != nil {
		return err
	}

	result, err := executeApply(ctx, drv, plans, !noReload)
	if err != nil {
		return err
	}
	for _, f := range failures {
		result.Failures = append(result.Failures, f.Error())
	}
	result.Success = len(failures) == 0

	if jsonOutput {
		if err := output.JSON(result); err != nil {
			return err
		}
	} else {
		for _, c := range result.Changes {
			switch {
			case c.Written && c.Enabled:
				output.Success("%s written and enabled", c.Target)
			case c.Written:
				output.Success("%s written", c.Target)
			default:
				output.Success("%s enabled", c.Target)
			}
		}
		if len(result.Changes) == 0 {
			output.Info("Nothing to do, %d target(s) up to date", len(result.Unchanged))
		}
		for _, f := range failures {
			output.Error("%v", f)
		}
	}

	return failureError(failures)
}

// planApply compares each output with what the driver holds.
func planApply(drv driver.Driver, outputs []fragment.Output) ([]applyPlan, error) {
	plans := make([]applyPlan, 0, len(outputs))
	for _, out := range outputs {
		p := applyPlan{out: out}
		text, err := drv.Read(out.Target.ID())
		switch {
		case err == nil:
			p.exists = true
			p.current = text
		case errors.Is(err, errors.ErrTargetNotFound):
		default:
			return nil, fmt.Errorf("failed to read %s: %w", out.Target.ID(), err)
		}
		if p.exists {
			enabled, err := drv.IsEnabled(p.id())
			if err != nil {
				return nil, fmt.Errorf("failed to check %s: %w", p.id(), err)
			}
			p.enabled = enabled
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// executeApply writes and enables every pending target, then tests and
// reloads once. A failure at any step restores every target touched so far.
func executeApply(ctx context.Context, drv driver.Driver, plans []applyPlan, reload bool) (*ApplyResult, error) {
	result := &ApplyResult{Changes: make([]ApplyChange, 0), Unchanged: make([]string, 0)}

	var (
		snapshots    []*driver.Snapshot
		newlyEnabled []string
	)
	rollback := func() error {
		var errs []error
		for i := len(snapshots) - 1; i >= 0; i-- {
			if err := drv.Restore(snapshots[i]); err != nil {
				logger.Error("failed to restore %s: %v", snapshots[i].ID, err)
				errs = append(errs, err)
			}
		}
		for _, id := range newlyEnabled {
			if enabled, _ := drv.IsEnabled(id); enabled {
				if err := drv.Disable(id); err != nil {
					errs = append(errs, err)
				}
			}
		}
		logger.Info("rolled back %d target(s), %d newly enabled", len(snapshots), len(newlyEnabled))
		return errors.Join(errs...)
	}
	abort := func(err error) (*ApplyResult, error) {
		if rbErr := rollback(); rbErr != nil {
			output.Warn("Rollback failed: %v", rbErr)
		}
		return nil, err
	}

	for _, p := range plans {
		id := p.id()
		change := ApplyChange{Target: id}

		if p.changed() {
			snap, err := drv.Snapshot(id)
			if err != nil {
				return abort(fmt.Errorf("failed to snapshot %s: %w", id, err))
			}
			snapshots = append(snapshots, snap)

			progress("Writing %s...", id)
			if err := drv.Write(p.out); err != nil {
				return abort(fmt.Errorf("failed to write %s: %w", id, err))
			}
			change.Written = true
		}

		if !p.enabled {
			enabled, err := drv.IsEnabled(id)
			if err != nil {
				return abort(fmt.Errorf("failed to check %s: %w", id, err))
			}
			if !enabled {
				if err := drv.Enable(id); err != nil {
					return abort(fmt.Errorf("failed to enable %s: %w", id, err))
				}
				newlyEnabled = append(newlyEnabled, id)
				change.Enabled = true
			}
		}

		if change.Written || change.Enabled {
			result.Changes = append(result.Changes, change)
		} else {
			result.Unchanged = append(result.Unchanged, id)
		}
	}

	if len(result.Changes) == 0 {
		return result, nil
	}

	if err := testAndReload(ctx, drv, reload, rollback); err != nil {
		return nil, err
	}
	result.Reloaded = reload
	return result, nil
}

func applyDryRun(drv driver.Driver, p applyPlan) *DryRunResult {
	id := p.id()
	paths := drv.Paths()
	r := newDryRun(id, drv.Name())

	file := filepath.Join(paths.Available, p.out.Target.FileName())
	switch {
	case !p.exists:
		r.add("create_file", file, fmt.Sprintf("%d fragments", len(p.out.Fragments)))
		r.ConfigPreview = p.out.Text
	case p.changed():
		r.add("update_file", file, fmt.Sprintf("%d fragments", len(p.out.Fragments)))
		r.ConfigPreview = p.out.Text
	}
	if !p.enabled && paths.Available != paths.Enabled {
		r.add("create_symlink", filepath.Join(paths.Enabled, p.out.Target.FileName()), "-> "+file)
	}
	if len(r.Operations) > 0 {
		r.add("test_config", "", "")
		if !noReload {
			r.add("reload_server", "", drv.Name())
		}
	}
	return r
}

// failureError summarizes assembly failures into the command's exit error.
func failureError(failures []error) error {
	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("%d target(s) failed to assemble: %w", len(failures), errors.Join(failures...))
}
