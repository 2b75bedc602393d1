// Command jobctl runs the job search pipeline from a terminal.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kirillkom/job-search-assistant/internal/config"
	"github.com/kirillkom/job-search-assistant/internal/observability/logging"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "jobctl",
		Short:         "Job search assistant CLI",
		Long:          "jobctl analyzes queries, searches the job corpus, rebuilds the vector index and imports scraped listings.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := logLevel
			if level == "" {
				level = config.Load().LogLevel
			}
			slog.SetDefault(logging.NewJSONLoggerTo(cmd.ErrOrStderr(), "jobctl", level))
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	root.AddCommand(
		newAnalyzeCmd(),
		newSearchCmd(),
		newIndexCmd(),
		newImportCmd(),
	)
	return root
}
