package main

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/searchbench/internal/history"
	"github.com/sells-group/searchbench/internal/report"
)

var (
	summaryHeaders = []string{"Provider", "Accuracy", "Avg Latency", "Total Cost", "Errors", "Timeouts"}
	errorHeaders   = []string{"Provider", "Errors", "Timeouts", "Top Error"}

	providerCaser = cases.Title(language.English)
)

const errorCellLimit = 60

// renderTable lays out rows as a plain-text table. The first column and the
// header row are left-justified, every other cell right-justified.
func renderTable(headers []string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	formatRow := func(row []string, header bool) string {
		cells := make([]string, len(row))
		for i, cell := range row {
			if i == 0 || header {
				cells[i] = cell + strings.Repeat(" ", widths[i]-len(cell))
			} else {
				cells[i] = strings.Repeat(" ", widths[i]-len(cell)) + cell
			}
		}
		return strings.Join(cells, " | ")
	}

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("-", w)
	}

	lines := []string{formatRow(headers, true), strings.Join(rules, "-+-")}
	for _, row := range rows {
		lines = append(lines, formatRow(row, false))
	}
	return strings.Join(lines, "\n")
}

func summaryRows(summaries []report.ProviderSummary) [][]string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			providerCaser.String(s.Name),
			formatPct(s.Accuracy),
			formatLatencyCell(s.AvgLatencyMS),
			fmt.Sprintf("$%.2f", s.TotalCostUSD),
			fmt.Sprintf("%d", s.Errors),
			fmt.Sprintf("%d", s.Timeouts),
		})
	}
	return rows
}

func errorRows(summaries []report.ProviderSummary, breakdown map[string][]history.ErrorCount) [][]string {
	var rows [][]string
	for _, s := range summaries {
		if s.Errors == 0 && s.Timeouts == 0 {
			continue
		}
		rows = append(rows, []string{
			providerCaser.String(s.Name),
			fmt.Sprintf("%d", s.Errors),
			fmt.Sprintf("%d", s.Timeouts),
			formatTopError(breakdown[s.Name]),
		})
	}
	return rows
}

func formatTopError(samples []history.ErrorCount) string {
	if len(samples) == 0 {
		return "-"
	}
	top := samples[0]
	return fmt.Sprintf("%s (%d)", truncateCell(top.Error, errorCellLimit), top.Count)
}

func truncateCell(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return strings.TrimRight(text[:limit-3], " ") + "..."
}

func formatPct(value float64) string {
	return fmt.Sprintf("%.0f%%", value*100)
}

func formatLatencyCell(ms *int) string {
	if ms == nil {
		return "-"
	}
	return fmt.Sprintf("%.1fs", float64(*ms)/1000)
}
