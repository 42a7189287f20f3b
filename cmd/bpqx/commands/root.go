// Package commands provides the CLI commands for BPQX.
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/bpqx-io/bpqx/internal/config"
	"github.com/bpqx-io/bpqx/internal/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	flagDir      string
	flagExtDir   string
	flagLogLevel string
	flagNoColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "bpqx",
	Short: "BPQX - extensible menu runner for packet radio nodes",
	Long: `BPQX loads declaratively-defined extensions (menu trees terminating
in parameterized shell commands) and drives the user through selection,
help lookup, and input collection over a plain line transport.

Run 'bpqx run' to start an interactive session, 'bpqx validate' to check
extension documents, or 'bpqx list' to show what would load.`,
	Version: Version,
	// Bare bpqx starts an interactive session.
	RunE: runSession,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// .env is optional; ignore a missing file.
		_ = godotenv.Load()

		logging.Init(logging.Config{
			Level: logging.ParseLevel(resolveOptions().LogLevel),
		})
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDir, "dir", "d", "", "Application root directory (default \".\")")
	rootCmd.PersistentFlags().StringVar(&flagExtDir, "extensions", "", "Extensions directory (default <dir>/extensions)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable color output")

	rootCmd.SetVersionTemplate(fmt.Sprintf("bpqx %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
}

// resolveOptions merges flags with environment overrides.
func resolveOptions() config.Options {
	return config.Resolve(config.Options{
		Dir:           flagDir,
		ExtensionsDir: flagExtDir,
		LogLevel:      flagLogLevel,
		NoColor:       flagNoColor,
		Watch:         flagWatch,
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
