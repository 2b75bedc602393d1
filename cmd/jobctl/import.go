package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/kirillkom/job-search-assistant/internal/config"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/corpus/jsonfile"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/repository/postgres"
)

func newImportCmd() *cobra.Command {
	var dsn string

	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Replace the postgres corpus with listings from a JSON file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if dsn == "" {
				dsn = config.Load().PostgresDSN
			}

			records, err := jsonfile.NewLoader(args[0], slog.Default()).LoadCorpus(ctx)
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}

			db, err := postgres.OpenDB(dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.EnsureSchema(ctx, db); err != nil {
				return err
			}
			if err := postgres.NewJobRepository(db).ReplaceCorpus(ctx, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d record(s)\n", len(records))
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "dsn", "", "Postgres DSN (overrides POSTGRES_DSN)")
	return cmd
}
