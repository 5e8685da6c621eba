package cli

import (
	"fmt"
	"path/filepath"

	"github.com/ksyq12/vhostfrag/internal/output"
	"github.com/spf13/cobra"
)

var disableCmd = &cobra.Command{
	Use:   "disable <target>",
	Short: "Disable a target",
	Long: `Disable a target by removing its symlink from sites-enabled. The file in
sites-available is kept.

Examples:
  vhostfrag disable 15-default-80`,
	Args: cobra.ExactArgs(1),
	RunE: runDisable,
}

func init() {
	disableCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload web server")
	disableCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")

	rootCmd.AddCommand(disableCmd)
}

func runDisable(cmd *cobra.Command, args []string) error {
	id := args[0]

	if err := validateTarget(id); err != nil {
		return err
	}

	// Load config and driver
	_, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	// Dry-run mode: show what would be done without making changes
	if dryRun {
		r := newDryRun(id, drv.Name())
		r.add("remove_symlink", filepath.Join(drv.Paths().Enabled, id+".conf"), "")
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

	// Disable via driver
	progress("Disabling %s...", id)
	if err := drv.Disable(id); err != nil {
		return fmt.Errorf("failed to disable target: %w", err)
	}

	// Test and reload (no rollback needed for disable)
	if err := testAndReload(commandContext(cmd), drv, !noReload, nil); err != nil {
		output.Warn("Post-disable check failed: %v", err)
		// Continue anyway since the target is already disabled
	}

	return outputResult(newSuccessResult(id, "disable"), "Target %s disabled", id)
}
