package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sells-group/searchbench/internal/history"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the latest run's scoreboard",
	RunE: func(_ *cobra.Command, _ []string) error {
		doc := history.Load(history.Path(cfg.Results.Dir))
		if len(doc.Runs) == 0 {
			fmt.Println("No history yet.")
			return nil
		}

		latest := doc.Runs[len(doc.Runs)-1]
		if len(latest.Results) == 0 {
			fmt.Println("No provider results found.")
			return nil
		}

		fmt.Printf("%s | %s | %d queries\n", latest.Date, latest.QuerySet, latest.NQueries)
		fmt.Println(renderTable(summaryHeaders, historySummaryRows(latest.Results)))

		if rows := historyErrorRows(latest.Results, latest.ErrorBreakdown); len(rows) > 0 {
			fmt.Println("Errors")
			fmt.Println(renderTable(errorHeaders, rows))
		}
		return nil
	},
}

// historySummaryRows renders archived provider stats best-first.
func historySummaryRows(results map[string]history.ProviderEntry) [][]string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := results[names[i]].Accuracy, results[names[j]].Accuracy
		if a != b {
			return a > b
		}
		return names[i] < names[j]
	})

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		entry := results[name]
		rows = append(rows, []string{
			providerCaser.String(name),
			formatPct(entry.Accuracy),
			formatLatencyCell(entry.AvgLatencyMS),
			fmt.Sprintf("$%.2f", entry.TotalCostUSD),
			fmt.Sprintf("%d", entry.Errors),
			fmt.Sprintf("%d", entry.Timeouts),
		})
	}
	return rows
}

func historyErrorRows(results map[string]history.ProviderEntry, breakdown map[string][]history.ErrorCount) [][]string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	var rows [][]string
	for _, name := range names {
		entry := results[name]
		if entry.Errors == 0 && entry.Timeouts == 0 {
			continue
		}
		rows = append(rows, []string{
			providerCaser.String(name),
			fmt.Sprintf("%d", entry.Errors),
			fmt.Sprintf("%d", entry.Timeouts),
			formatTopError(breakdown[name]),
		})
	}
	return rows
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
