package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/searchbench/internal/config"
	"github.com/sells-group/searchbench/internal/model"
)

const (
	defaultParallelEndpoint = "https://api.parallel.ai/v1beta/search"
	parallelBetaHeader      = "search-extract-2025-10-10"

	parallelMaxObjectiveLen  = 5000
	parallelMaxResults       = 10
	parallelMaxCharsPerEntry = 1200
)

// Parallel queries Parallel's beta search endpoint with the "pro" processor.
// The API returns ranked results rather than a single answer, so the adapter
// synthesizes one from the top excerpts when no summary is present.
type Parallel struct {
	key      string
	endpoint string
	http     *http.Client
}

func NewParallel(cfg config.ProviderConfig) (*Parallel, error) {
	if cfg.Key == "" {
		return nil, eris.New("provider: parallel api key not set")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultParallelEndpoint
	}
	return &Parallel{key: cfg.Key, endpoint: endpoint, http: newHTTPClient()}, nil
}

func (p *Parallel) Name() string          { return "parallel" }
func (p *Parallel) Endpoint() string      { return p.endpoint }
func (p *Parallel) CostPerQuery() float64 { return 0.005 }

func (p *Parallel) Search(ctx context.Context, query string, timeout time.Duration) model.SearchResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	objective := query
	if len(objective) > parallelMaxObjectiveLen {
		objective = objective[:parallelMaxObjectiveLen]
	}
	payload, _ := json.Marshal(map[string]any{
		"processor":            "pro",
		"objective":            objective,
		"max_results":          parallelMaxResults,
		"max_chars_per_result": parallelMaxCharsPerEntry,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return failure(start, err.Error(), false, map[string]string{"error": err.Error()})
	}
	req.Header.Set("x-api-key", p.key)
	req.Header.Set("parallel-beta", parallelBetaHeader)
	req.Header.Set("Content-Type", "application/json")

	body, failed := doRequest(p.http, req, start)
	if failed != nil {
		return *failed
	}
	data, failed := decodeJSON(body, start)
	if failed != nil {
		return *failed
	}

	answer, citations := synthesizeParallelAnswer(data)

	return model.SearchResult{
		Answer:      answer,
		Citations:   citations,
		LatencyMS:   latencySince(start),
		CostUSD:     p.CostPerQuery(),
		RawResponse: json.RawMessage(body),
	}
}

// synthesizeParallelAnswer prefers an explicit answer or summary field, then
// falls back to joining the top two snippets from the first three results.
// Each result contributes at most one snippet, taken from the first populated
// content field.
func synthesizeParallelAnswer(data map[string]any) (string, []string) {
	answer := stringField(data, "answer")
	if answer == "" {
		answer = stringField(data, "summary")
	}

	var citations []string
	var snippets []string
	results, _ := data["results"].([]any)
	if len(results) > 3 {
		results = results[:3]
	}
	for _, entry := range results {
		result, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if url := stringField(result, "url"); url != "" {
			citations = append(citations, url)
		}
		for _, key := range []string{"excerpts", "content", "snippet", "description"} {
			value := result[key]
			if value == nil {
				continue
			}
			if key == "excerpts" {
				if excerpts, ok := value.([]any); ok {
					if len(excerpts) == 0 {
						continue
					}
					for _, excerpt := range excerpts {
						if s, ok := excerpt.(string); ok && s != "" {
							snippets = append(snippets, compactWhitespace(s))
						}
					}
					break
				}
			}
			if s, ok := value.(string); ok && s != "" {
				snippets = append(snippets, compactWhitespace(s))
				break
			}
		}
	}
	if answer == "" {
		answer = joinSnippets(snippets, 2)
	}
	return answer, citations
}
