package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/job-search-assistant/internal/config"
	"github.com/kirillkom/job-search-assistant/internal/core/usecase"
	"github.com/kirillkom/job-search-assistant/internal/infrastructure/rules"
)

func newAnalyzeCmd() *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "analyze <query>",
		Short: "Print the search intent extracted from a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rulesPath == "" {
				rulesPath = config.Load().RulesPath
			}
			searchRules, err := rules.Load(rulesPath)
			if err != nil {
				return err
			}
			intent := usecase.NewQueryInterpreter(searchRules).Analyze(strings.Join(args, " "))
			return writeJSON(cmd, intent)
		},
	}
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Path to rules YAML (overrides RULES_PATH)")
	return cmd
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
