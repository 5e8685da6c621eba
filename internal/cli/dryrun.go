package cli

import (
	"github.com/ksyq12/vhostfrag/internal/output"
)

var dryRun bool

// DryRunOperation is one change a command would make.
type DryRunOperation struct {
	Action  string `json:"action"`
	Path    string `json:"path,omitempty"`
	Details string `json:"details,omitempty"`
}

// DryRunResult describes what a command would do to one target.
type DryRunResult struct {
	DryRun        bool              `json:"dry_run"`
	Target        string            `json:"target"`
	Driver        string            `json:"driver"`
	Operations    []DryRunOperation `json:"operations"`
	ConfigPreview string            `json:"config_preview,omitempty"`
}

func newDryRun(target, driverName string) *DryRunResult {
	return &DryRunResult{DryRun: true, Target: target, Driver: driverName}
}

func (r *DryRunResult) add(action, path, details string) {
	r.Operations = append(r.Operations, DryRunOperation{Action: action, Path: path, Details: details})
}

// outputDryRun prints the planned operations without touching the system.
func outputDryRun(results ...*DryRunResult) error {
	if jsonOutput {
		if len(results) == 1 {
			return output.JSON(results[0])
		}
		return output.JSON(results)
	}

	output.Warn("[DRY RUN] No changes will be made")
	for _, r := range results {
		output.Print("")
		output.Info("Target: %s (driver: %s)", r.Target, r.Driver)
		if len(r.Operations) == 0 {
			output.Print("  nothing to do")
		}
		for i, op := range r.Operations {
			line := op.Action
			if op.Path != "" {
				line += " " + op.Path
			}
			if op.Details != "" {
				line += " (" + op.Details + ")"
			}
			output.Print("  %d. %s", i+1, line)
		}
		if r.ConfigPreview != "" {
			output.Print("")
			output.Print("  Configuration preview:")
			output.Raw(r.ConfigPreview)
		}
	}
	return nil
}
