package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/searchbench/internal/history"
	"github.com/sells-group/searchbench/internal/model"
)

func intPtr(v int) *int           { return &v }
func boolPtr(v bool) *bool        { return &v }
func floatPtr(v float64) *float64 { return &v }

func sampleGradedRun() model.GradedRun {
	queryA := model.Query{ID: "factual_01", Text: "Capital of France?", Expected: []string{"Paris"}, Category: "factual"}
	queryB := model.Query{
		ID:       "evidence_01",
		Text:     "Latest 10-K revenue for Acme?",
		Expected: []string{"$1B"},
		Category: "evidence",
		Evidence: &model.EvidenceRequirement{MinCitations: 1},
	}
	run := model.RunResult{
		ID:         "run-1",
		QueryCount: 2,
		Providers:  []string{"exa", "tavily"},
		Results: []model.QueryResult{
			{Query: queryA, Results: map[string]model.SearchResult{
				"exa":    {Answer: "Paris", LatencyMS: 100, CostUSD: 0.01},
				"tavily": {LatencyMS: 20000, Error: "timeout", TimedOut: true},
			}},
			{Query: queryB, Results: map[string]model.SearchResult{
				"exa":    {Answer: "$1B", Citations: []string{"https://sec.gov/x"}, LatencyMS: 200, CostUSD: 0.01},
				"tavily": {Answer: "$2B", LatencyMS: 300},
			}},
		},
		ProviderStats: map[string]model.ProviderStats{
			"exa":    {AvgLatencyMS: intPtr(150), LatencyP99MS: intPtr(200), TotalCostUSD: 0.02},
			"tavily": {AvgLatencyMS: intPtr(300), TotalCostUSD: 0, Errors: 1, Timeouts: 1},
		},
	}
	return model.GradedRun{
		Run: run,
		Queries: []model.GradedQuery{
			{
				Query:     queryA,
				Responses: run.Results[0].Results,
				Judgments: map[string]model.JudgeResult{
					"exa":    {Label: model.LabelCorrect, Passed: true},
					"tavily": {Label: model.LabelIncorrect, Passed: false},
				},
			},
			{
				Query:     queryB,
				Responses: run.Results[1].Results,
				Judgments: map[string]model.JudgeResult{
					"exa":    {Label: model.LabelCorrect, Passed: true, EvidencePassed: boolPtr(true)},
					"tavily": {Label: model.LabelIncorrect, Passed: false, EvidencePassed: boolPtr(false), EvidenceNotes: "only 0 citation(s), need 1"},
				},
			},
		},
	}
}

func sampleMeta() map[string]ProviderMeta {
	return map[string]ProviderMeta{
		"exa":    {Endpoint: "https://api.exa.ai/answer", TimeoutUsed: 30},
		"tavily": {Endpoint: "https://api.tavily.com/search", TimeoutUsed: 20},
	}
}

func TestBuildSummaries(t *testing.T) {
	summaries := BuildSummaries(sampleGradedRun(), sampleMeta())
	require.Len(t, summaries, 2)

	// sorted best-first
	assert.Equal(t, "exa", summaries[0].Name)
	assert.Equal(t, 1.0, summaries[0].Accuracy)
	assert.Equal(t, "tavily", summaries[1].Name)
	assert.Equal(t, 0.0, summaries[1].Accuracy)

	require.NotNil(t, summaries[0].EvidencePassRate)
	assert.Equal(t, 1.0, *summaries[0].EvidencePassRate)
	require.NotNil(t, summaries[1].EvidencePassRate)
	assert.Equal(t, 0.0, *summaries[1].EvidencePassRate)

	assert.Equal(t, "https://api.exa.ai/answer", summaries[0].Endpoint)
	require.NotNil(t, summaries[0].TimeoutUsed)
	assert.Equal(t, 30, *summaries[0].TimeoutUsed)
	assert.Equal(t, 1, summaries[1].Errors)
	assert.Equal(t, 1, summaries[1].Timeouts)
}

func TestBuildSummariesNoJudgments(t *testing.T) {
	graded := model.GradedRun{Run: model.RunResult{Providers: []string{"exa"}}}
	summaries := BuildSummaries(graded, nil)
	require.Len(t, summaries, 1)
	assert.Equal(t, 0.0, summaries[0].Accuracy)
	assert.Nil(t, summaries[0].EvidencePassRate)
	assert.Nil(t, summaries[0].TimeoutUsed)
}

func TestBuildErrorBreakdown(t *testing.T) {
	run := model.RunResult{Results: []model.QueryResult{
		{Results: map[string]model.SearchResult{"exa": {Error: "timeout"}}},
		{Results: map[string]model.SearchResult{"exa": {Error: "context deadline exceeded (Client.Timeout)"}}},
		{Results: map[string]model.SearchResult{"exa": {Error: "unexpected status 500"}}},
		{Results: map[string]model.SearchResult{"exa": {Error: "unexpected status 500"}}},
		{Results: map[string]model.SearchResult{"exa": {Error: "unexpected status 429"}}},
		{Results: map[string]model.SearchResult{"exa": {Error: "unexpected status 503"}}},
		{Results: map[string]model.SearchResult{"exa": {Answer: "fine"}}},
	}}

	breakdown := BuildErrorBreakdown(run)
	entries := breakdown["exa"]
	require.Len(t, entries, 3)
	// every timeout variant collapses into one bucket
	assert.Equal(t, history.ErrorCount{Error: "timeout", Count: 2}, entries[0])
	assert.Equal(t, history.ErrorCount{Error: "unexpected status 500", Count: 2}, entries[1])
	assert.Equal(t, 1, entries[2].Count)
}

func TestNormalizeErrorMessage(t *testing.T) {
	assert.Equal(t, "timeout", normalizeErrorMessage("Read Timeout after 30s"))
	assert.Equal(t, "unknown error", normalizeErrorMessage("   "))
	assert.Equal(t, "a b c", normalizeErrorMessage("a\n  b\tc"))

	long := strings.Repeat("x", 200)
	got := normalizeErrorMessage(long)
	assert.Len(t, got, 120)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestBuildHistoryEntry(t *testing.T) {
	graded := sampleGradedRun()
	summaries := BuildSummaries(graded, sampleMeta())

	entry, events := BuildHistoryEntry(graded, "public", "test-model", summaries, "strict")
	assert.Equal(t, "public", entry.QuerySet)
	assert.Equal(t, 2, entry.NQueries)
	assert.Equal(t, "test-model", entry.JudgeModel)
	assert.Equal(t, "strict", entry.EvidenceMode)
	require.Contains(t, entry.Results, "exa")
	assert.Equal(t, 1.0, entry.Results["exa"].Accuracy)
	assert.Equal(t, "https://api.exa.ai/answer", entry.Results["exa"].Endpoint)
	require.Contains(t, entry.ErrorBreakdown, "tavily")

	require.Len(t, events, 1)
	assert.Equal(t, "tavily", events[0].Provider)
	assert.Equal(t, "factual_01", events[0].QueryID)
	require.NotNil(t, events[0].TimeoutUsed)
	assert.Equal(t, 20, *events[0].TimeoutUsed)
	assert.Equal(t, len("Capital of France?"), events[0].QueryLength)
}

func TestRenderHTML(t *testing.T) {
	graded := sampleGradedRun()
	summaries := BuildSummaries(graded, sampleMeta())
	historyRuns := []history.RunEntry{
		{Results: map[string]history.ProviderEntry{"exa": {Accuracy: 0.8}}},
		{Results: map[string]history.ProviderEntry{"exa": {Accuracy: 1.0}}},
	}

	html, err := RenderHTML(graded, "public", "test-model", summaries, historyRuns, "strict")
	require.NoError(t, err)

	assert.Contains(t, html, "<title>SearchBench Results")
	assert.Contains(t, html, "<th>Evidence Pass</th>")
	assert.Contains(t, html, "Exa")
	assert.Contains(t, html, "100%")
	assert.Contains(t, html, "graded by test-model")
	assert.Contains(t, html, "Evidence mode: strict.")
	assert.Contains(t, html, "Evidence: min 1 citations")
	// two history points is enough for a sparkline
	assert.Contains(t, html, "<svg class=\"sparkline\"")
	assert.Contains(t, html, "Not enough history")
}

func TestRenderHTMLEscapesContent(t *testing.T) {
	query := model.Query{ID: "q1", Text: `<script>alert("x")</script>`, Expected: []string{"ok"}}
	graded := model.GradedRun{
		Run: model.RunResult{QueryCount: 1, Providers: []string{"exa"},
			Results: []model.QueryResult{{Query: query, Results: map[string]model.SearchResult{"exa": {Answer: "<b>bold</b>"}}}}},
		Queries: []model.GradedQuery{{
			Query:     query,
			Responses: map[string]model.SearchResult{"exa": {Answer: "<b>bold</b>"}},
			Judgments: map[string]model.JudgeResult{"exa": {Label: model.LabelCorrect, Passed: true}},
		}},
	}
	html, err := RenderHTML(graded, "public", "m", BuildSummaries(graded, nil), nil, "off")
	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert")
	assert.NotContains(t, html, "<b>bold</b>")
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "88%", formatPct(0.88))
	assert.Equal(t, "-", formatPctOrDash(nil))
	assert.Equal(t, "50%", formatPctOrDash(floatPtr(0.5)))
	assert.Equal(t, "-", formatLatency(nil))
	assert.Equal(t, "1.2s", formatLatency(intPtr(1234)))
	assert.Equal(t, "$0.25", formatCost(0.25))
	assert.Equal(t, "short", truncate("short", 220))
	assert.Equal(t, strings.Repeat("a", 7)+"...", truncate(strings.Repeat("a", 11), 10))
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	graded := sampleGradedRun()

	paths, err := WriteReport(graded, "public", "test-model", sampleMeta(), dir, "strict")
	require.NoError(t, err)

	for _, p := range []string{paths.Latest, paths.Dated, paths.History} {
		_, statErr := os.Stat(p)
		assert.NoError(t, statErr, p)
	}
	assert.Equal(t, filepath.Join(dir, "latest.html"), paths.Latest)

	doc := history.Load(paths.History)
	require.Len(t, doc.Runs, 1)
	require.Len(t, doc.TimeoutEvents, 1)

	// second run appends
	_, err = WriteReport(graded, "public", "test-model", sampleMeta(), dir, "strict")
	require.NoError(t, err)
	doc = history.Load(paths.History)
	assert.Len(t, doc.Runs, 2)
}
