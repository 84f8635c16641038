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

const defaultLinkupEndpoint = "https://api.linkup.so/v1/search"

// Linkup queries the Linkup search API in standard mode.
type Linkup struct {
	key      string
	endpoint string
	http     *http.Client
}

func NewLinkup(cfg config.ProviderConfig) (*Linkup, error) {
	if cfg.Key == "" {
		return nil, eris.New("provider: linkup api key not set")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultLinkupEndpoint
	}
	return &Linkup{key: cfg.Key, endpoint: endpoint, http: newHTTPClient()}, nil
}

func (p *Linkup) Name() string          { return "linkup" }
func (p *Linkup) Endpoint() string      { return p.endpoint }
func (p *Linkup) CostPerQuery() float64 { return 0.0055 }

func (p *Linkup) Search(ctx context.Context, query string, timeout time.Duration) model.SearchResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, _ := json.Marshal(map[string]any{"query": query, "mode": "standard"})
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

	answer := stringField(data, "answer")
	if answer == "" {
		answer = stringField(data, "summary")
	}

	var citations []string
	var snippets []string
	for _, result := range linkupResults(data) {
		u := stringField(result, "url")
		if u == "" {
			u = stringField(result, "link")
		}
		if u == "" {
			u = stringField(result, "source")
		}
		if u != "" {
			citations = append(citations, u)
		}
		snippet := ""
		for _, key := range []string{"snippet", "summary", "description", "title"} {
			if snippet = stringField(result, key); snippet != "" {
				break
			}
		}
		if snippet != "" {
			snippets = append(snippets, compactWhitespace(snippet))
		}
	}
	if answer == "" {
		answer = joinSnippets(snippets, 2)
	}

	return model.SearchResult{
		Answer:      answer,
		Citations:   citations,
		LatencyMS:   latencySince(start),
		CostUSD:     p.CostPerQuery(),
		RawResponse: json.RawMessage(body),
	}
}

// linkupResults finds the result list under whichever envelope key the API
// used for this response shape.
func linkupResults(data map[string]any) []map[string]any {
	for _, key := range []string{"results", "data", "documents", "items"} {
		list, ok := data[key].([]any)
		if !ok {
			continue
		}
		out := make([]map[string]any, 0, len(list))
		for _, entry := range list {
			if m, ok := entry.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
