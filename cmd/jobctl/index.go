package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/job-search-assistant/internal/bootstrap"
	"github.com/kirillkom/job-search-assistant/internal/config"
)

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Embed the corpus and rebuild the vector index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := bootstrap.New(ctx, config.Load(), bootstrap.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			start := time.Now()
			indexed, err := app.IndexUC.IndexCorpus(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d record(s) in %s\n", indexed, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
