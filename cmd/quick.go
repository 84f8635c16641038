package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/searchbench/internal/queryset"
)

const quickSampleSize = 10

var (
	quickProviders string
	quickQueries   string
)

var quickCmd = &cobra.Command{
	Use:   "quick",
	Short: "Run a random 10-query sample for a fast signal",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		names, err := parseProviders(quickProviders)
		if err != nil {
			return err
		}
		searchers, err := initProviders(names)
		if err != nil {
			return err
		}

		queries, err := queryset.Load(quickQueries, cfg.Queries.Dir)
		if err != nil {
			return err
		}
		queries = queryset.Sample(queries, quickSampleSize)

		paths, err := executeBenchmark(ctx, searchers, queries, quickQueries, cfg.Results.Dir)
		if err != nil {
			return err
		}

		fmt.Printf("Quick report written to %s\n", paths.Latest)
		return nil
	},
}

func init() {
	quickCmd.Flags().StringVar(&quickProviders, "providers", "all", "comma-separated provider names")
	quickCmd.Flags().StringVar(&quickQueries, "queries", "public", "query set: public, hard, private, or a file path")
	rootCmd.AddCommand(quickCmd)
}
