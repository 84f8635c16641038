package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/searchbench/internal/config"
	"github.com/sells-group/searchbench/internal/model"
)

const defaultBraveEndpoint = "https://api.search.brave.com/res/v1/web/search"

// Brave queries the Brave web search API with the summarizer enabled. When
// no summary comes back it falls back to stitching result descriptions.
type Brave struct {
	key      string
	endpoint string
	http     *http.Client
}

func NewBrave(cfg config.ProviderConfig) (*Brave, error) {
	if cfg.Key == "" {
		return nil, eris.New("provider: brave api key not set")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultBraveEndpoint
	}
	return &Brave{key: cfg.Key, endpoint: endpoint, http: newHTTPClient()}, nil
}

func (p *Brave) Name() string          { return "brave" }
func (p *Brave) Endpoint() string      { return p.endpoint }
func (p *Brave) CostPerQuery() float64 { return 0.005 }

func (p *Brave) Search(ctx context.Context, query string, timeout time.Duration) model.SearchResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("summary", "1")
	params.Set("count", "10")
	target := p.endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return failure(start, err.Error(), false, map[string]string{"error": err.Error()})
	}
	req.Header.Set("X-Subscription-Token", p.key)

	body, failed := doRequest(p.http, req, start)
	if failed != nil {
		return *failed
	}
	data, failed := decodeJSON(body, start)
	if failed != nil {
		return *failed
	}

	answer, citations := braveSummary(data)
	answer = strings.TrimSpace(answer)

	var snippets []string
	results := braveResults(data)
	if len(results) > 3 {
		results = results[:3]
	}
	for _, result := range results {
		if u := stringField(result, "url"); u != "" {
			citations = append(citations, u)
		}
		snippet := stringField(result, "description")
		if snippet == "" {
			snippet = stringField(result, "snippet")
		}
		if snippet == "" {
			snippet = stringField(result, "title")
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

// braveSummary pulls the answer from a top-level summary string or, failing
// that, the summarizer block, collecting the summarizer's source URLs.
func braveSummary(data map[string]any) (string, []string) {
	summary := stringField(data, "summary")
	var sources []string
	if summary == "" {
		if summarizer, ok := data["summarizer"].(map[string]any); ok {
			summary = stringField(summarizer, "summary")
			if summary == "" {
				summary = stringField(summarizer, "answer")
			}
			if list, ok := summarizer["sources"].([]any); ok {
				for _, entry := range list {
					switch v := entry.(type) {
					case map[string]any:
						if u := stringField(v, "url"); u != "" {
							sources = append(sources, u)
						}
					case string:
						if v != "" {
							sources = append(sources, v)
						}
					}
				}
			}
		}
	}
	return summary, sources
}

// braveResults reads results from the web.results envelope, falling back to
// a top-level results list.
func braveResults(data map[string]any) []map[string]any {
	extract := func(raw any) []map[string]any {
		list, ok := raw.([]any)
		if !ok {
			return nil
		}
		out := make([]map[string]any, 0, len(list))
		for _, entry := range list {
			if m, ok := entry.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	if web, ok := data["web"].(map[string]any); ok {
		if results := extract(web["results"]); results != nil {
			return results
		}
	}
	return extract(data["results"])
}
