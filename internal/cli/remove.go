package cli

import (
	"fmt"
	"path/filepath"

	"github.com/ksyq12/vhostfrag/internal/config"
	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/input"
	"github.com/ksyq12/vhostfrag/internal/output"
	"github.com/spf13/cobra"
)

var (
	forceRemove bool
	keepConfig  bool
)

var removeCmd = &cobra.Command{
	Use:     "remove <target>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a target",
	Long: `Remove a target's file, fragments and symlink, then drop its vhost from
the declaration file.

Examples:
  vhostfrag remove 15-default-80
  vhostfrag rm 15-default-80 --force
  vhostfrag rm 15-default-80 --keep-config`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "Force removal without confirmation")
	removeCmd.Flags().BoolVar(&keepConfig, "keep-config", false, "Keep the vhost in the declaration file")
	removeCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload web server")
	removeCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")

	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	id := args[0]

	if err := validateTarget(id); err != nil {
		return err
	}

	// Load config and driver
	cfg, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	_, findErr := cfg.FindVHost(id)
	declared := findErr == nil

	if dryRun {
		paths := drv.Paths()
		r := newDryRun(id, drv.Name())
		if paths.Available != paths.Enabled {
			r.add("remove_symlink", filepath.Join(paths.Enabled, id+".conf"), "")
		}
		r.add("remove_file", filepath.Join(paths.Available, id+".conf"), "")
		if declared && !keepConfig {
			r.add("update_config", cfg.Path(), "drop vhost")
		}
		r.add("test_config", "", "")
		if !noReload {
			r.add("reload_server", "", drv.Name())
		}
		return outputDryRun(r)
	}

	// Require root for system operations
	if err := requireRoot(); err != nil {
		return err
	}

	// Confirm removal if not forced
	if !forceRemove {
		ok, err := input.Confirm(deps.StdinReader, promptWriter(), fmt.Sprintf("Are you sure you want to remove target '%s'?", id))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !ok {
			progress("Removal cancelled")
			return nil
		}
	}

	// Remove via driver; a declared target may not have been applied yet
	progress("Removing %s...", id)
	removed := true
	if err := drv.Remove(id); err != nil {
		if !declared || !errors.Is(err, errors.ErrTargetNotFound) {
			return fmt.Errorf("failed to remove target: %w", err)
		}
		removed = false
	}

	// Test and reload (no rollback for remove)
	if removed {
		if err := testAndReload(commandContext(cmd), drv, !noReload, nil); err != nil {
			output.Warn("Post-removal check failed: %v", err)
			// Continue anyway since the target is already removed
		}
	}

	if declared && !keepConfig {
		if err := dropVHost(cfg, id); err != nil {
			output.Warn("Target removed but config save failed: %v", err)
		}
	}

	return outputResult(newSuccessResult(id, "remove"), "Target %s removed", id)
}

func dropVHost(cfg *config.Config, id string) error {
	if err := cfg.RemoveVHost(id); err != nil {
		return err
	}
	return saveConfig(cfg)
}
