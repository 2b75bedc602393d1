package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kirillkom/job-search-assistant/internal/bootstrap"
	"github.com/kirillkom/job-search-assistant/internal/config"
	"github.com/kirillkom/job-search-assistant/internal/core/domain"
)

func newSearchCmd() *cobra.Command {
	var (
		budget int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run the multi-step search and print the ranked listings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := bootstrap.New(ctx, config.Load(), bootstrap.Options{IndexIfStale: true})
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.SearchUC.Search(ctx, strings.Join(args, " "), budget)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, result)
			}
			return writeTable(cmd, result)
		},
	}
	cmd.Flags().IntVarP(&budget, "budget", "n", 0, "Maximum number of listings to return (0 uses SEARCH_DEFAULT_BUDGET)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")
	return cmd
}

func writeTable(cmd *cobra.Command, result *domain.SearchResult) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d match(es), strategy=%s, type=%s\n", result.TotalMatches, result.Strategy, result.Intent.Category)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tCOMPANY\tSALARY\tLOCATION")
	for i, rec := range result.Records {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, rec.Title, rec.Company, rec.Salary, rec.Location)
	}
	return tw.Flush()
}
