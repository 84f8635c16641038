package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/searchbench/internal/config"
	"github.com/sells-group/searchbench/internal/model"
)

const defaultExaEndpoint = "https://api.exa.ai/answer"

// Exa queries Exa's /answer endpoint, which returns a synthesized answer
// with citations directly.
type Exa struct {
	key      string
	endpoint string
	http     *http.Client
}

func NewExa(cfg config.ProviderConfig) (*Exa, error) {
	if cfg.Key == "" {
		return nil, eris.New("provider: exa api key not set")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultExaEndpoint
	}
	return &Exa{key: cfg.Key, endpoint: endpoint, http: newHTTPClient()}, nil
}

func (p *Exa) Name() string          { return "exa" }
func (p *Exa) Endpoint() string      { return p.endpoint }
func (p *Exa) CostPerQuery() float64 { return 0.01 }

func (p *Exa) Search(ctx context.Context, query string, timeout time.Duration) model.SearchResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, _ := json.Marshal(map[string]any{"query": query, "text": true})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return failure(start, err.Error(), false, map[string]string{"error": err.Error()})
	}
	req.Header.Set("x-api-key", p.key)
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
		// Some responses nest the answer under a structured object.
		if obj, ok := data["answer"].(map[string]any); ok {
			answer = fmt.Sprintf("%v", obj)
		}
	}

	return model.SearchResult{
		Answer:      answer,
		Citations:   normalizeCitations(data["citations"]),
		LatencyMS:   latencySince(start),
		CostUSD:     p.CostPerQuery(),
		RawResponse: json.RawMessage(body),
	}
}

// normalizeCitations flattens Exa's citation shapes, which vary between a
// list of URLs, a list of objects, and a keyed map of object lists.
func normalizeCitations(raw any) []string {
	var citations []string
	appendEntry := func(entry any) {
		switch v := entry.(type) {
		case map[string]any:
			url := stringField(v, "url")
			if url == "" {
				url = stringField(v, "id")
			}
			if url == "" {
				url = stringField(v, "source")
			}
			if url != "" {
				citations = append(citations, url)
			}
		case string:
			if v != "" {
				citations = append(citations, v)
			}
		default:
			if v != nil {
				citations = append(citations, fmt.Sprintf("%v", v))
			}
		}
	}

	switch v := raw.(type) {
	case []any:
		for _, entry := range v {
			appendEntry(entry)
		}
	case map[string]any:
		for _, value := range v {
			if list, ok := value.([]any); ok {
				for _, entry := range list {
					appendEntry(entry)
				}
			}
		}
	}
	return citations
}
