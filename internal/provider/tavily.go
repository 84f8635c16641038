package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/searchbench/internal/config"
	"github.com/sells-group/searchbench/internal/model"
)

const (
	defaultTavilyEndpoint = "https://api.tavily.com/search"
	tavilyPaidCost        = 0.008
)

// Tavily queries the Tavily search API with answer synthesis enabled. Cost
// attribution depends on the configured plan: the free tier reports zero,
// the paid tier a flat rate, and an explicit per-query override wins over
// both.
type Tavily struct {
	key      string
	endpoint string
	cost     float64
	http     *http.Client
}

func NewTavily(cfg config.TavilyConfig) (*Tavily, error) {
	if cfg.Key == "" {
		return nil, eris.New("provider: tavily api key not set")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultTavilyEndpoint
	}
	return &Tavily{
		key:      cfg.Key,
		endpoint: endpoint,
		cost:     resolveTavilyCost(cfg),
		http:     newHTTPClient(),
	}, nil
}

func resolveTavilyCost(cfg config.TavilyConfig) float64 {
	if cfg.CostPerQuery > 0 {
		return cfg.CostPerQuery
	}
	if strings.EqualFold(strings.TrimSpace(cfg.CostMode), "paid") {
		return tavilyPaidCost
	}
	return 0
}

func (p *Tavily) Name() string          { return "tavily" }
func (p *Tavily) Endpoint() string      { return p.endpoint }
func (p *Tavily) CostPerQuery() float64 { return p.cost }

func (p *Tavily) Search(ctx context.Context, query string, timeout time.Duration) model.SearchResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, _ := json.Marshal(map[string]any{
		"query":               query,
		"search_depth":        "basic",
		"include_answer":      true,
		"include_raw_content": false,
		"max_results":         5,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return failure(start, err.Error(), false, map[string]string{"error": err.Error()})
	}
	req.Header.Set("Authorization", "Bearer "+p.key)
	req.Header.Set("Content-Type", "application/json")

	body, failed := doRequest(p.http, req, start)
	if failed != nil {
		return *failed
	}
	data, failed := decodeJSON(body, start)
	if failed != nil {
		return *failed
	}

	var citations []string
	if results, ok := data["results"].([]any); ok {
		for _, entry := range results {
			if m, ok := entry.(map[string]any); ok {
				if u := stringField(m, "url"); u != "" {
					citations = append(citations, u)
				}
			}
		}
	}

	return model.SearchResult{
		Answer:      stringField(data, "answer"),
		Citations:   citations,
		LatencyMS:   latencySince(start),
		CostUSD:     p.cost,
		RawResponse: json.RawMessage(body),
	}
}
