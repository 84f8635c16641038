package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sells-group/searchbench/internal/history"
)

var historyLast int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent benchmark runs",
	RunE: func(_ *cobra.Command, _ []string) error {
		doc := history.Load(history.Path(cfg.Results.Dir))

		runs := doc.Runs
		if historyLast > 0 && len(runs) > historyLast {
			runs = runs[len(runs)-historyLast:]
		}
		if len(runs) == 0 {
			fmt.Println("No history yet.")
			return nil
		}

		for _, run := range runs {
			providers := make([]string, 0, len(run.Results))
			for name := range run.Results {
				providers = append(providers, name)
			}
			sort.Strings(providers)
			fmt.Printf("%s | %s | %d queries | %s\n",
				run.Date, run.QuerySet, run.NQueries, strings.Join(providers, ", "))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLast, "last", 10, "number of recent runs to show")
	rootCmd.AddCommand(historyCmd)
}
