package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/searchbench/internal/queryset"
)

var (
	runProviders string
	runQueries   string
	runOutput    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full benchmark and write a report",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		names, err := parseProviders(runProviders)
		if err != nil {
			return err
		}
		searchers, err := initProviders(names)
		if err != nil {
			return err
		}

		queries, err := queryset.Load(runQueries, cfg.Queries.Dir)
		if err != nil {
			return err
		}

		output := runOutput
		if output == "" {
			output = cfg.Results.Dir
		}

		paths, err := executeBenchmark(ctx, searchers, queries, runQueries, output)
		if err != nil {
			return err
		}

		fmt.Printf("Report written to %s\n", paths.Latest)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runProviders, "providers", "all", "comma-separated: exa,parallel,brave,linkup,tavily")
	runCmd.Flags().StringVar(&runQueries, "queries", "public", "query set: public, hard, private, or a file path")
	runCmd.Flags().StringVar(&runOutput, "output", "", "output directory (default from config)")
	rootCmd.AddCommand(runCmd)
}
