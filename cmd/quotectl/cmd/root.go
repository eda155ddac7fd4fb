package cmd

import (
	"fmt"

	"QuoteLens/internal/di"
	"QuoteLens/pkg/config"
	applogger "QuoteLens/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	toolkit *di.Toolkit
	cleanup = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "quotectl",
	Short: "QuoteLens command line client",
	Long: `QuoteLens command line client.

Commands:
    quote SYMBOL       - fetch a quote with its analysis
    watchlist          - list, add, remove, check and refresh watched symbols
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initToolkit()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(watchlistCmd)
}

func initToolkit() error {
	cfg, err := config.LoadWithEnv(cfgFile)
	if err != nil {
		return err
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	l, err := applogger.New(&applogger.Config{Level: level, Format: "console", Output: "stderr"})
	if err != nil {
		return err
	}

	tk, done, err := di.InitializeToolkit(cfg, l)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	toolkit, cleanup = tk, done
	return nil
}
