package cli

import (
	"os"

	"github.com/ksyq12/vhostfrag/internal/logger"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	verbose    bool
	configPath string
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "vhostfrag",
	Short: "Assemble Apache virtual host files from ordered fragments",
	Long: `vhostfrag renders Apache virtual host declarations into ordered fragments
and assembles one configuration file per target.

Declarations (proxies, aliases, rewrites) are read from a YAML or TOML file,
validated, rendered and written to sites-available as {priority}-{vhost}-{port}.conf.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on verbose flag (parsed by cobra)
	cobra.OnInitialize(func() {
		logger.Init(verbose)
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Declaration file (default ~/.config/vhostfrag/config.yaml)")
}
