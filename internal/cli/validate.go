package cli

import (
	"fmt"
	"strings"

	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/output"
	"github.com/ksyq12/vhostfrag/internal/template"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every declaration without writing files",
	Long: `Run the whole assembly and report every failing target with its error
code. The exit status is non-zero when any target fails. With --verbose the
directive templates shipped for the configured driver are listed.

Examples:
  vhostfrag validate
  vhostfrag validate --json`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// ValidationFailure is one failing target in validate's JSON output.
type ValidationFailure struct {
	Code    string   `json:"code"`
	Target  string   `json:"target,omitempty"`
	Source  string   `json:"source,omitempty"`
	Groups  []string `json:"groups,omitempty"`
	Message string   `json:"message"`
}

// ValidationReport is validate's JSON output. Templates lists the directive
// templates shipped for the configured driver.
type ValidationReport struct {
	Valid     bool                `json:"valid"`
	Targets   []string            `json:"targets"`
	Failures  []ValidationFailure `json:"failures,omitempty"`
	Templates []string            `json:"templates"`
}

func newValidationFailure(err error) ValidationFailure {
	f := ValidationFailure{Code: string(errors.CodeOf(err)), Message: err.Error()}
	var vhostErr *errors.VHostError
	if errors.As(err, &vhostErr) {
		f.Target = vhostErr.Target
		f.Source = vhostErr.Source
		f.Groups = vhostErr.Groups
		// WrapTarget keeps the declaration details one level down.
		var inner *errors.VHostError
		if errors.As(vhostErr.Err, &inner) {
			f.Code = string(inner.Code)
			if f.Source == "" {
				f.Source = inner.Source
			}
			if f.Groups == nil {
				f.Groups = inner.Groups
			}
		}
	}
	if f.Code == "" {
		f.Code = string(errors.ErrCodeInternal)
	}
	return f
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	templates, err := template.Available(cfg.Driver)
	if err != nil {
		return err
	}

	outputs, runErr := assembleConfig(commandContext(cmd), cfg)
	failures := splitErrors(runErr)

	report := ValidationReport{
		Valid:     len(failures) == 0,
		Targets:   make([]string, 0, len(outputs)),
		Templates: templates,
	}
	for _, out := range outputs {
		report.Targets = append(report.Targets, out.Target.ID())
	}
	for _, f := range failures {
		report.Failures = append(report.Failures, newValidationFailure(f))
	}

	if jsonOutput {
		if err := output.JSON(report); err != nil {
			return err
		}
	} else {
		if verbose {
			output.Print("Templates (%s): %s", cfg.Driver, strings.Join(report.Templates, ", "))
		}
		for _, f := range report.Failures {
			output.Error("[%s] %s", f.Code, f.Message)
		}
		if len(report.Targets) > 0 {
			output.Success("%d target(s) valid", len(report.Targets))
		}
	}

	if !report.Valid {
		return fmt.Errorf("%d target(s) failed validation", len(failures))
	}
	return nil
}
