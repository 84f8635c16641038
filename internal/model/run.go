package model

import "time"

// QueryResult holds the per-provider results for one query.
type QueryResult struct {
	Query   Query                   `json:"query"`
	Results map[string]SearchResult `json:"results"`
}

// ProviderStats aggregates one provider's performance over a run. Latency
// percentiles are computed over successful calls only; nil means no
// successful samples. Cost is summed over all results, failures included.
type ProviderStats struct {
	AvgLatencyMS *int    `json:"avg_latency_ms"`
	LatencyP50MS *int    `json:"latency_p50_ms"`
	LatencyP95MS *int    `json:"latency_p95_ms"`
	LatencyP99MS *int    `json:"latency_p99_ms"`
	TotalCostUSD float64 `json:"total_cost_usd"`
	Errors       int     `json:"errors"`
	Timeouts     int     `json:"timeouts"`
}

// RunResult is the full query x provider matrix for one benchmark execution.
type RunResult struct {
	ID            string                   `json:"id"`
	StartedAt     time.Time                `json:"started_at"`
	DurationS     float64                  `json:"duration_s"`
	QueryCount    int                      `json:"query_count"`
	Providers     []string                 `json:"providers"`
	Results       []QueryResult            `json:"results"`
	ProviderStats map[string]ProviderStats `json:"provider_stats"`
}

// GradedQuery pairs a query's provider responses with their verdicts.
type GradedQuery struct {
	Query     Query                   `json:"query"`
	Responses map[string]SearchResult `json:"responses"`
	Judgments map[string]JudgeResult  `json:"judgments"`
}

// GradedRun is a RunResult plus per-query per-provider verdicts.
type GradedRun struct {
	Run     RunResult     `json:"run"`
	Queries []GradedQuery `json:"queries"`
}
