package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var enableCmd = &cobra.Command{
	Use:   "enable <target>",
	Short: "Enable a target",
	Long: `Enable a written target by creating a symlink in sites-enabled.

Examples:
  vhostfrag enable 15-default-80`,
	Args: cobra.ExactArgs(1),
	RunE: runEnable,
}

func init() {
	enableCmd.Flags().BoolVar(&noReload, "no-reload", false, "Don't reload web server")
	enableCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without making changes")

	rootCmd.AddCommand(enableCmd)
}

func runEnable(cmd *cobra.Command, args []string) error {
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
		paths := drv.Paths()
		r := newDryRun(id, drv.Name())
		r.add("create_symlink", filepath.Join(paths.Enabled, id+".conf"), "-> "+filepath.Join(paths.Available, id+".conf"))
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

	// Enable via driver
	progress("Enabling %s...", id)
	if err := drv.Enable(id); err != nil {
		return fmt.Errorf("failed to enable target: %w", err)
	}

	// Test and reload with rollback
	rollback := func() error {
		return drv.Disable(id)
	}

	if err := testAndReload(commandContext(cmd), drv, !noReload, rollback); err != nil {
		return err
	}

	return outputResult(newSuccessResult(id, "enable"), "Target %s enabled", id)
}
