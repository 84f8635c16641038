// Package provider contains the search API adapters under benchmark. Each
// adapter translates one provider's HTTP interface into a uniform
// SearchResult and never returns a Go error from Search: transport failures,
// bad statuses, and timeouts are captured in the result itself.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/searchbench/internal/config"
	"github.com/sells-group/searchbench/internal/model"
)

// Searcher is the capability consumed by the runner.
type Searcher interface {
	Name() string
	Endpoint() string
	CostPerQuery() float64
	Search(ctx context.Context, query string, timeout time.Duration) model.SearchResult
}

// Factory constructs a provider from configuration. A missing API key is a
// construction-time error, never deferred to the first call.
type Factory func(cfg *config.Config) (Searcher, error)

// The provider set is fixed and small, so the registry is a static table
// from a closed name enumeration to constructors.
var factories = map[string]Factory{
	"exa":      func(cfg *config.Config) (Searcher, error) { return NewExa(cfg.Providers.Exa) },
	"parallel": func(cfg *config.Config) (Searcher, error) { return NewParallel(cfg.Providers.Parallel) },
	"brave":    func(cfg *config.Config) (Searcher, error) { return NewBrave(cfg.Providers.Brave) },
	"linkup":   func(cfg *config.Config) (Searcher, error) { return NewLinkup(cfg.Providers.Linkup) },
	"tavily":   func(cfg *config.Config) (Searcher, error) { return NewTavily(cfg.Providers.Tavily) },
}

// New constructs the named provider.
func New(name string, cfg *config.Config) (Searcher, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, eris.Errorf("provider: unknown provider %q", name)
	}
	return factory(cfg)
}

// Names returns the closed set of provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// newHTTPClient returns the shared transport configuration for adapters.
// Per-call deadlines come from the context, not a client-level timeout.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// failure builds a failed SearchResult with latency measured from start.
func failure(start time.Time, errMsg string, timedOut bool, raw any) model.SearchResult {
	return model.SearchResult{
		LatencyMS:   latencySince(start),
		RawResponse: marshalRaw(raw),
		Error:       errMsg,
		TimedOut:    timedOut,
	}
}

func latencySince(start time.Time) int {
	return int(time.Since(start).Milliseconds())
}

func marshalRaw(raw any) json.RawMessage {
	if raw == nil {
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	return data
}

// doRequest executes req and converts transport-level failures into a failed
// SearchResult. On success the response body is returned and the result is
// nil.
func doRequest(hc *http.Client, req *http.Request, start time.Time) ([]byte, *model.SearchResult) {
	resp, err := hc.Do(req)
	if err != nil {
		if isTimeout(req.Context(), err) {
			res := failure(start, "timeout", true, map[string]string{"error": err.Error()})
			return nil, &res
		}
		res := failure(start, err.Error(), false, map[string]string{"error": err.Error()})
		return nil, &res
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(req.Context(), err) {
			res := failure(start, "timeout", true, map[string]string{"error": err.Error()})
			return nil, &res
		}
		res := failure(start, err.Error(), false, map[string]string{"error": err.Error()})
		return nil, &res
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := fmt.Sprintf("unexpected status %d", resp.StatusCode)
		res := failure(start, msg, false, map[string]any{
			"error":         msg,
			"status_code":   resp.StatusCode,
			"response_text": string(body),
		})
		return nil, &res
	}

	return body, nil
}

// decodeJSON parses body into a generic document, converting malformed
// payloads into a failed SearchResult.
func decodeJSON(body []byte, start time.Time) (map[string]any, *model.SearchResult) {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		res := failure(start, err.Error(), false, map[string]string{
			"error":         "invalid_json",
			"response_text": string(body),
		})
		return nil, &res
	}
	return data, nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// joinSnippets joins the first n snippets with a single space.
func joinSnippets(snippets []string, n int) string {
	if len(snippets) > n {
		snippets = snippets[:n]
	}
	return strings.Join(snippets, " ")
}

func compactWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func stringField(data map[string]any, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
