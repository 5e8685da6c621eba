package cli

import (
	"sort"
	"strconv"

	"github.com/ksyq12/vhostfrag/internal/output"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all targets",
	Long: `List declared targets and the target files found in sites-available.

Examples:
  vhostfrag list
  vhostfrag ls
  vhostfrag list --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

type targetListItem struct {
	Target       string `json:"target"`
	VHost        string `json:"vhost,omitempty"`
	Port         int    `json:"port,omitempty"`
	Declarations int    `json:"declarations"`
	Declared     bool   `json:"declared"`
	Written      bool   `json:"written"`
	Enabled      bool   `json:"enabled"`
}

func runList(cmd *cobra.Command, args []string) error {
	// Load config and driver
	cfg, drv, err := loadConfigAndDriver()
	if err != nil {
		return err
	}

	// Targets present on disk
	written := make(map[string]bool)
	ids, err := drv.List()
	if err != nil {
		output.Warn("Could not read from %s: %v", drv.Name(), err)
	}
	for _, id := range ids {
		written[id] = true
	}

	items := make([]targetListItem, 0, len(cfg.VHosts)+len(ids))
	seen := make(map[string]bool)
	for _, v := range cfg.VHosts {
		id := v.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		enabled, _ := drv.IsEnabled(id)
		items = append(items, targetListItem{
			Target:       id,
			VHost:        v.Name,
			Port:         v.Port,
			Declarations: len(v.Declarations()),
			Declared:     true,
			Written:      written[id],
			Enabled:      enabled,
		})
	}

	// Also add targets found by the driver but not declared
	for _, id := range ids {
		if seen[id] {
			continue
		}
		enabled, _ := drv.IsEnabled(id)
		items = append(items, targetListItem{
			Target:  id,
			Written: true,
			Enabled: enabled,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Target < items[j].Target
	})

	if len(items) == 0 {
		if jsonOutput {
			return output.JSON([]targetListItem{})
		}
		output.Info("No targets declared")
		return nil
	}

	if jsonOutput {
		return output.JSON(items)
	}

	headers := []string{"TARGET", "VHOST", "PORT", "DECLARATIONS", "WRITTEN", "ENABLED"}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		vhost, port, decls := "-", "-", "-"
		if item.Declared {
			vhost = item.VHost
			port = strconv.Itoa(item.Port)
			decls = strconv.Itoa(item.Declarations)
		} else {
			vhost = "(undeclared)"
		}
		rows = append(rows, []string{
			item.Target,
			vhost,
			port,
			decls,
			yesNo(item.Written),
			yesNo(item.Enabled),
		})
	}

	output.Table(headers, rows)
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
