package model

import "encoding/json"

// SearchResult is the uniform outcome of one provider call for one query.
// Either Error is empty (success, Answer may still be empty) or Error is set
// and Answer/Citations are ignored downstream. Produced exactly once per
// (query, provider) pair.
type SearchResult struct {
	Answer      string          `json:"answer"`
	Citations   []string        `json:"citations"`
	LatencyMS   int             `json:"latency_ms"`
	CostUSD     float64         `json:"cost_usd"`
	RawResponse json.RawMessage `json:"raw_response,omitempty"`
	Error       string          `json:"error,omitempty"`
	TimedOut    bool            `json:"timed_out,omitempty"`
}

// Failed reports whether the call ended in a transport or provider failure.
func (r SearchResult) Failed() bool {
	return r.Error != ""
}
