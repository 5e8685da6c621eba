package cli

import (
	"strings"

	"github.com/ksyq12/vhostfrag/internal/constraint"
	"github.com/ksyq12/vhostfrag/internal/directive"
	"github.com/ksyq12/vhostfrag/internal/fragment"
	"github.com/ksyq12/vhostfrag/internal/output"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <target>",
	Short: "Show details of a target",
	Long: `Show a declared target: its vhost settings, declarations, the fragments
it assembles from and the state of its file on disk.

Examples:
  vhostfrag show 15-default-80
  vhostfrag show 15-default-80 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

type declarationDetail struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Order  int      `json:"order"`
	Label  string   `json:"label"`
	Groups []string `json:"groups"`
}

// showDetail represents the detailed target information for output
type showDetail struct {
	Target       string              `json:"target"`
	File         string              `json:"file"`
	VHost        string              `json:"vhost"`
	Port         int                 `json:"port"`
	Priority     int                 `json:"priority"`
	ServerName   string              `json:"servername,omitempty"`
	DocRoot      string              `json:"docroot,omitempty"`
	Declarations []declarationDetail `json:"declarations"`
	Fragments    []RenderedFragment  `json:"fragments,omitempty"`
	Error        string              `json:"error,omitempty"`
	Written      bool                `json:"written"`
	UpToDate     bool                `json:"up_to_date"`
	Enabled      bool                `json:"enabled"`
}

func runShow(cmd *cobra.Command, args []string) error {
	id := args[0]

	if err := validateTarget(id); err != nil {
		return err
	}

	cfg, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	vhost, err := cfg.FindVHost(id)
	if err != nil {
		return err
	}

	detail := showDetail{
		Target:       id,
		File:         id + ".conf",
		VHost:        vhost.Name,
		Port:         vhost.Port,
		Priority:     vhost.PriorityOrDefault(),
		ServerName:   vhost.ServerName,
		DocRoot:      vhost.DocRoot,
		Declarations: make([]declarationDetail, 0),
	}
	for _, d := range vhost.Declarations() {
		detail.Declarations = append(detail.Declarations, declarationDetail{
			Name:   d.Name(),
			Kind:   string(d.Kind()),
			Order:  d.Order(),
			Label:  directive.Label(vhost.Name, d),
			Groups: constraint.ProvidedNames(d.Groups()),
		})
	}

	outputs, runErr := assembleConfig(commandContext(cmd), cfg)
	out, assembled := fragment.ByID(outputs)[id]
	if assembled {
		detail.Fragments = newRenderedTarget(out).Fragments
	} else if failures := failuresFor(runErr, []string{id}); len(failures) > 0 {
		detail.Error = failures[0].Error()
	}

	if text, err := drv.Read(id); err == nil {
		detail.Written = true
		detail.UpToDate = assembled && text == out.Text
	}
	enabled, err := drv.IsEnabled(id)
	if err != nil {
		output.Warn("Could not determine enabled status: %v", err)
	}
	detail.Enabled = enabled

	if jsonOutput {
		return output.JSON(detail)
	}

	output.Print("")
	output.Print("Target:     %s", detail.Target)
	output.Print("File:       %s", detail.File)
	output.Print("VHost:      %s", detail.VHost)
	output.Print("Port:       %d", detail.Port)
	output.Print("Priority:   %d", detail.Priority)
	if detail.ServerName != "" {
		output.Print("ServerName: %s", detail.ServerName)
	}
	if detail.DocRoot != "" {
		output.Print("DocRoot:    %s", detail.DocRoot)
	}

	if len(detail.Declarations) > 0 {
		output.Print("")
		output.Print("Declarations:")
		for _, d := range detail.Declarations {
			groups := strings.Join(d.Groups, ", ")
			if groups == "" {
				groups = "none provided"
			}
			output.Print("  %4d  %-8s %s (%s)", d.Order, d.Kind, d.Name, groups)
		}
	}

	if len(detail.Fragments) > 0 {
		output.Print("")
		output.Print("Fragments:")
		for _, f := range detail.Fragments {
			output.Print("  %4d  %s", f.Order, f.Source)
		}
	}

	output.Print("")
	if detail.Error != "" {
		output.Error("Assembly failed: %s", detail.Error)
	}
	switch {
	case !detail.Written:
		output.Print("Status:     not written")
	case detail.UpToDate:
		output.Print("Status:     up to date")
	default:
		output.Print("Status:     out of date")
	}
	output.Print("Enabled:    %s", yesNo(detail.Enabled))
	output.Print("")

	return nil
}
