// Package cli provides the command-line interface for statisfy.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/statisfy/statisfy/internal/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	debug   bool

	// Global logger
	logger *logging.Logger
)

// Version information - set by main package at startup from internal/version.
var (
	Version   = "v1.2.0-dev"
	BuildTime = "unknown"
)

// NewRootCmd creates the root command for CLI mode.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "statisfy",
		Short: "Statisfy - desktop client with statisfy:// deep-link support",
		Long: `Statisfy ` + Version + ` - Built: ` + BuildTime + `

Launching with no arguments opens the desktop app (or focuses the
already-running window). Deep links passed as arguments, for example

  statisfy statisfy://open/42

are delivered to the running instance. The subcommands below manage the
deep-link integration from the command line.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultCLILogger()
			if verbose || debug {
				logging.SetGlobalLevel(-1) // Debug level (zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.Version = Version + " (" + BuildTime + ")"

	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newStatusCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
