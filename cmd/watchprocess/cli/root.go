// Package cli implements the watchprocess command-line interface using
// Cobra, and the indirection entry point used when watchprocess is invoked
// under another command's name.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/majorcontext/watchprocess/internal/config"
	"github.com/majorcontext/watchprocess/internal/log"
)

var (
	verbose bool
	cfg     = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   Name,
	Short: "Record telemetry for commands shadowed on PATH",
	Long: `watchprocess records what a command did every time it runs.

Link it under the name of the command to observe, in a directory earlier on
PATH than the real one:

  ln -s $(which watchprocess) ~/shadow/gcc
  export PATH=~/shadow:$PATH

Each invocation of gcc then runs the real gcc and stores a record of its
timing, resource usage and process ancestry. Use 'watchprocess collect' to
export the records and 'watchprocess clean' to delete them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err == nil {
			cfg = loaded
		}

		if err := log.Init(log.Options{
			Debug:         verbose || cfg.Debug,
			Dir:           cfg.Log.Dir,
			RetentionDays: cfg.Log.RetentionDays,
		}); err != nil {
			cmd.PrintErrf("Warning: failed to initialize file logging: %v\n", err)
		}
		log.Debug("configuration loaded", "path", config.Path(), "results_directory", cfg.ResultsDirectory)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Close()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
