package cli

import (
	"github.com/ksyq12/vhostfrag/internal/fragment"
	"github.com/ksyq12/vhostfrag/internal/output"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [target...]",
	Short: "Print assembled configuration files",
	Long: `Assemble the declared vhosts and print the resulting files without
writing anything. With no arguments every target is printed.

Examples:
  vhostfrag render
  vhostfrag render 15-default-80
  vhostfrag render --json`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
}

// RenderedFragment describes one fragment of a rendered target.
type RenderedFragment struct {
	Order  int    `json:"order"`
	Seq    int    `json:"seq"`
	Source string `json:"source"`
}

// RenderedTarget is the JSON form of an assembled file.
type RenderedTarget struct {
	Target    string             `json:"target"`
	File      string             `json:"file"`
	Fragments []RenderedFragment `json:"fragments"`
	Text      string             `json:"text"`
}

func newRenderedTarget(out fragment.Output) RenderedTarget {
	rt := RenderedTarget{
		Target:    out.Target.ID(),
		File:      out.Target.FileName(),
		Fragments: make([]RenderedFragment, 0, len(out.Fragments)),
		Text:      out.Text,
	}
	for _, f := range out.Fragments {
		rt.Fragments = append(rt.Fragments, RenderedFragment{Order: f.Order, Seq: f.Seq, Source: f.Source})
	}
	return rt
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	outputs, runErr := assembleConfig(commandContext(cmd), cfg)
	selected, err := selectOutputs(cfg, outputs, args)
	if err != nil {
		return err
	}
	failures := failuresFor(runErr, args)

	if jsonOutput {
		rendered := make([]RenderedTarget, 0, len(selected))
		for _, out := range selected {
			rendered = append(rendered, newRenderedTarget(out))
		}
		if err := output.JSON(rendered); err != nil {
			return err
		}
	} else {
		for i, out := range selected {
			if len(selected) > 1 {
				if i > 0 {
					output.Print("")
				}
				output.Print("==> %s <==", out.Target.FileName())
			}
			output.Raw(out.Text)
		}
		for _, f := range failures {
			output.Error("%v", f)
		}
	}

	return failureError(failures)
}
