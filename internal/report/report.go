// Package report turns a graded run into provider summaries, the
// longitudinal history entry, and the rendered HTML report.
package report

import (
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/searchbench/internal/history"
	"github.com/sells-group/searchbench/internal/model"
)

const errorMessageLimit = 120

// ProviderMeta carries run-time provider facts the graded results don't
// hold themselves.
type ProviderMeta struct {
	Endpoint    string
	TimeoutUsed int
}

// ProviderSummary is one provider's scoreboard line.
type ProviderSummary struct {
	Name             string
	Accuracy         float64
	AvgLatencyMS     *int
	LatencyP50MS     *int
	LatencyP95MS     *int
	LatencyP99MS     *int
	TotalCostUSD     float64
	Errors           int
	Timeouts         int
	Endpoint         string
	TimeoutUsed      *int
	EvidencePassRate *float64
}

// Paths points at the files a report write produced.
type Paths struct {
	Latest  string
	Dated   string
	History string
}

// BuildSummaries computes per-provider accuracy and evidence pass rates and
// returns summaries sorted best-first. Providers with no graded answers
// score zero rather than being dropped.
func BuildSummaries(graded model.GradedRun, meta map[string]ProviderMeta) []ProviderSummary {
	run := graded.Run
	totals := make(map[string]int, len(run.Providers))
	passes := make(map[string]int, len(run.Providers))
	evidenceTotals := make(map[string]int, len(run.Providers))
	evidencePasses := make(map[string]int, len(run.Providers))
	for _, item := range graded.Queries {
		for name, judgment := range item.Judgments {
			totals[name]++
			if judgment.Passed {
				passes[name]++
			}
			if judgment.EvidencePassed != nil {
				evidenceTotals[name]++
				if *judgment.EvidencePassed {
					evidencePasses[name]++
				}
			}
		}
	}

	summaries := make([]ProviderSummary, 0, len(run.Providers))
	for _, name := range run.Providers {
		summary := ProviderSummary{Name: name}
		if totals[name] > 0 {
			summary.Accuracy = float64(passes[name]) / float64(totals[name])
		}
		if st, ok := run.ProviderStats[name]; ok {
			summary.AvgLatencyMS = st.AvgLatencyMS
			summary.LatencyP50MS = st.LatencyP50MS
			summary.LatencyP95MS = st.LatencyP95MS
			summary.LatencyP99MS = st.LatencyP99MS
			summary.TotalCostUSD = st.TotalCostUSD
			summary.Errors = st.Errors
			summary.Timeouts = st.Timeouts
		}
		if m, ok := meta[name]; ok {
			summary.Endpoint = m.Endpoint
			if m.TimeoutUsed > 0 {
				timeout := m.TimeoutUsed
				summary.TimeoutUsed = &timeout
			}
		}
		if evidenceTotals[name] > 0 {
			rate := float64(evidencePasses[name]) / float64(evidenceTotals[name])
			summary.EvidencePassRate = &rate
		}
		summaries = append(summaries, summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Accuracy > summaries[j].Accuracy
	})
	return summaries
}

// BuildErrorBreakdown groups failed calls per provider by normalized error
// message, keeping the three most frequent per provider.
func BuildErrorBreakdown(run model.RunResult) map[string][]history.ErrorCount {
	counts := make(map[string]map[string]int)
	for _, item := range run.Results {
		for name, response := range item.Results {
			if response.Error == "" {
				continue
			}
			key := normalizeErrorMessage(response.Error)
			if counts[name] == nil {
				counts[name] = make(map[string]int)
			}
			counts[name][key]++
		}
	}

	breakdown := make(map[string][]history.ErrorCount, len(counts))
	for name, perError := range counts {
		entries := make([]history.ErrorCount, 0, len(perError))
		for msg, count := range perError {
			entries = append(entries, history.ErrorCount{Error: msg, Count: count})
		}
		sort.SliceStable(entries, func(i, j int) bool {
			if entries[i].Count != entries[j].Count {
				return entries[i].Count > entries[j].Count
			}
			return entries[i].Error < entries[j].Error
		})
		if len(entries) > 3 {
			entries = entries[:3]
		}
		breakdown[name] = entries
	}
	return breakdown
}

// normalizeErrorMessage collapses every timeout variant into "timeout" and
// truncates anything else so one noisy provider cannot bloat the history.
func normalizeErrorMessage(message string) string {
	cleaned := strings.Join(strings.Fields(message), " ")
	if strings.Contains(strings.ToLower(cleaned), "timeout") {
		return "timeout"
	}
	if len(cleaned) > errorMessageLimit {
		return strings.TrimRight(cleaned[:errorMessageLimit-3], " ") + "..."
	}
	if cleaned == "" {
		return "unknown error"
	}
	return cleaned
}

// BuildHistoryEntry converts a graded run into its history record plus the
// individual timeout events observed during the run.
func BuildHistoryEntry(graded model.GradedRun, querySet, judgeModel string, summaries []ProviderSummary, evidenceMode string) (history.RunEntry, []history.TimeoutEvent) {
	run := graded.Run
	date := time.Now().UTC().Format(time.RFC3339)

	entry := history.RunEntry{
		Date:           date,
		QuerySet:       querySet,
		NQueries:       run.QueryCount,
		JudgeModel:     judgeModel,
		EvidenceMode:   evidenceMode,
		Results:        make(map[string]history.ProviderEntry, len(summaries)),
		ErrorBreakdown: BuildErrorBreakdown(run),
	}

	timeoutLookup := make(map[string]*int, len(summaries))
	for _, summary := range summaries {
		timeoutLookup[summary.Name] = summary.TimeoutUsed
		var evidenceRate *float64
		if summary.EvidencePassRate != nil {
			rounded := round4(*summary.EvidencePassRate)
			evidenceRate = &rounded
		}
		entry.Results[summary.Name] = history.ProviderEntry{
			Accuracy:         round4(summary.Accuracy),
			AvgLatencyMS:     summary.AvgLatencyMS,
			LatencyP50MS:     summary.LatencyP50MS,
			LatencyP95MS:     summary.LatencyP95MS,
			LatencyP99MS:     summary.LatencyP99MS,
			TotalCostUSD:     math.Round(summary.TotalCostUSD*1e6) / 1e6,
			Errors:           summary.Errors,
			Timeouts:         summary.Timeouts,
			Endpoint:         summary.Endpoint,
			TimeoutUsed:      summary.TimeoutUsed,
			EvidencePassRate: evidenceRate,
		}
	}

	var events []history.TimeoutEvent
	for _, item := range graded.Queries {
		for name, response := range item.Responses {
			if !response.TimedOut {
				continue
			}
			events = append(events, history.TimeoutEvent{
				Date:        date,
				Provider:    name,
				QueryID:     item.Query.ID,
				TimeoutUsed: timeoutLookup[name],
				QueryLength: len(item.Query.Text),
			})
		}
	}
	return entry, events
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// WriteReport renders the HTML report, writes latest.html plus a dated
// copy, and appends the run to history.json.
func WriteReport(graded model.GradedRun, querySet, judgeModel string, meta map[string]ProviderMeta, outputDir, evidenceMode string) (Paths, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Paths{}, eris.Wrap(err, "report: create output directory")
	}

	summaries := BuildSummaries(graded, meta)
	entry, events := BuildHistoryEntry(graded, querySet, judgeModel, summaries, evidenceMode)

	historyPath := history.Path(outputDir)
	doc, err := history.Append(historyPath, entry, events)
	if err != nil {
		return Paths{}, err
	}

	htmlText, err := RenderHTML(graded, querySet, judgeModel, summaries, doc.Runs, evidenceMode)
	if err != nil {
		return Paths{}, err
	}

	paths := Paths{
		Latest:  filepath.Join(outputDir, "latest.html"),
		Dated:   filepath.Join(outputDir, time.Now().UTC().Format("2006-01-02")+".html"),
		History: historyPath,
	}
	if err := os.WriteFile(paths.Latest, []byte(htmlText), 0o644); err != nil {
		return Paths{}, eris.Wrap(err, "report: write latest.html")
	}
	if err := os.WriteFile(paths.Dated, []byte(htmlText), 0o644); err != nil {
		return Paths{}, eris.Wrap(err, "report: write dated report")
	}
	zap.L().Info("report written",
		zap.String("latest", paths.Latest),
		zap.String("history", paths.History))
	return paths, nil
}
