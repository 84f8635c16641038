// Package history persists the longitudinal record of benchmark runs as a
// single JSON document next to the rendered reports. The schema is stable
// across versions so old documents keep loading.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Filename is the history document's name inside the results directory.
const Filename = "history.json"

// Document is the full on-disk history.
type Document struct {
	Runs          []RunEntry     `json:"runs"`
	TimeoutEvents []TimeoutEvent `json:"timeout_events"`
}

// RunEntry summarizes one benchmark run.
type RunEntry struct {
	Date           string                   `json:"date"`
	QuerySet       string                   `json:"query_set"`
	NQueries       int                      `json:"n_queries"`
	JudgeModel     string                   `json:"judge_model"`
	EvidenceMode   string                   `json:"evidence_mode"`
	Results        map[string]ProviderEntry `json:"results"`
	ErrorBreakdown map[string][]ErrorCount  `json:"error_breakdown,omitempty"`
}

// ProviderEntry is one provider's aggregates within a run entry.
type ProviderEntry struct {
	Accuracy         float64  `json:"accuracy"`
	AvgLatencyMS     *int     `json:"avg_latency_ms"`
	LatencyP50MS     *int     `json:"latency_p50_ms"`
	LatencyP95MS     *int     `json:"latency_p95_ms"`
	LatencyP99MS     *int     `json:"latency_p99_ms"`
	TotalCostUSD     float64  `json:"total_cost_usd"`
	Errors           int      `json:"errors"`
	Timeouts         int      `json:"timeouts"`
	Endpoint         string   `json:"endpoint"`
	TimeoutUsed      *int     `json:"timeout_used"`
	EvidencePassRate *float64 `json:"evidence_pass_rate"`
}

// ErrorCount is one normalized error message and how often it occurred.
type ErrorCount struct {
	Error string `json:"error"`
	Count int    `json:"count"`
}

// TimeoutEvent records a single timed-out provider call, kept for timeout
// calibration.
type TimeoutEvent struct {
	Date        string `json:"date"`
	Provider    string `json:"provider"`
	QueryID     string `json:"query_id"`
	TimeoutUsed *int   `json:"timeout_used"`
	QueryLength int    `json:"query_length"`
}

// Path returns the history file location for a results directory.
func Path(resultsDir string) string {
	return filepath.Join(resultsDir, Filename)
}

// Load reads the history document. A missing or unreadable file yields an
// empty document rather than an error: history is advisory, and a corrupt
// file should never block a run.
func Load(path string) Document {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		zap.L().Warn("history file is corrupt, starting fresh",
			zap.String("path", path), zap.Error(err))
		return Document{}
	}
	return doc
}

// Save writes the document, creating the parent directory if needed.
func Save(path string, doc Document) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrap(err, "history: create directory")
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "history: marshal")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "history: write")
	}
	return nil
}

// Append adds a run entry and its timeout events to the document at path
// and saves it back.
func Append(path string, entry RunEntry, events []TimeoutEvent) (Document, error) {
	doc := Load(path)
	doc.Runs = append(doc.Runs, entry)
	doc.TimeoutEvents = append(doc.TimeoutEvents, events...)
	if err := Save(path, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}
