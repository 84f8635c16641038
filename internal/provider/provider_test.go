package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/searchbench/internal/config"
)

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("altavista", &config.Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestNewMissingKey(t *testing.T) {
	cfg := &config.Config{}
	for _, name := range Names() {
		_, err := New(name, cfg)
		require.Error(t, err, name)
		assert.Contains(t, err.Error(), "api key not set")
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"brave", "exa", "linkup", "parallel", "tavily"}, Names())
}

func TestExaSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"answer": "Paris is the capital of France.",
			"citations": [
				{"url": "https://en.wikipedia.org/wiki/Paris"},
				{"id": "https://example.com/fallback-id"},
				"https://example.com/plain"
			]
		}`))
	}))
	defer server.Close()

	p, err := NewExa(config.ProviderConfig{Key: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	res := p.Search(context.Background(), "capital of France", 5*time.Second)
	require.Empty(t, res.Error)
	assert.False(t, res.TimedOut)
	assert.Equal(t, "Paris is the capital of France.", res.Answer)
	assert.Equal(t, []string{
		"https://en.wikipedia.org/wiki/Paris",
		"https://example.com/fallback-id",
		"https://example.com/plain",
	}, res.Citations)
	assert.Equal(t, 0.01, res.CostUSD)
	assert.NotEmpty(t, res.RawResponse)
}

func TestExaSearchKeyedCitations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer": "yes", "citations": {"web": [{"url": "https://a.example"}, {"source": "https://b.example"}]}}`))
	}))
	defer server.Close()

	p, err := NewExa(config.ProviderConfig{Key: "k", Endpoint: server.URL})
	require.NoError(t, err)

	res := p.Search(context.Background(), "q", 5*time.Second)
	require.Empty(t, res.Error)
	assert.ElementsMatch(t, []string{"https://a.example", "https://b.example"}, res.Citations)
}

func TestExaSearchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service melted", http.StatusInternalServerError)
	}))
	defer server.Close()

	p, err := NewExa(config.ProviderConfig{Key: "k", Endpoint: server.URL})
	require.NoError(t, err)

	res := p.Search(context.Background(), "q", 5*time.Second)
	assert.Equal(t, "unexpected status 500", res.Error)
	assert.False(t, res.TimedOut)
	assert.Zero(t, res.CostUSD)
	assert.Contains(t, string(res.RawResponse), "service melted")
}

func TestExaSearchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Write([]byte(`{"answer": "late"}`))
	}))
	defer server.Close()

	p, err := NewExa(config.ProviderConfig{Key: "k", Endpoint: server.URL})
	require.NoError(t, err)

	res := p.Search(context.Background(), "q", 50*time.Millisecond)
	assert.Equal(t, "timeout", res.Error)
	assert.True(t, res.TimedOut)
	assert.Empty(t, res.Answer)
}

func TestExaSearchInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>rate limited</html>"))
	}))
	defer server.Close()

	p, err := NewExa(config.ProviderConfig{Key: "k", Endpoint: server.URL})
	require.NoError(t, err)

	res := p.Search(context.Background(), "q", 5*time.Second)
	require.NotEmpty(t, res.Error)
	assert.False(t, res.TimedOut)
	assert.Contains(t, string(res.RawResponse), "invalid_json")
}

func TestParallelSearchSynthesis(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, parallelBetaHeader, r.Header.Get("parallel-beta"))
		w.Write([]byte(`{
			"results": [
				{"url": "https://a.example", "excerpts": ["first  excerpt", "second excerpt"]},
				{"url": "https://b.example", "content": "some   content here"},
				{"url": "https://c.example", "description": "third snippet"},
				{"url": "https://d.example", "description": "beyond the cap"}
			]
		}`))
	}))
	defer server.Close()

	p, err := NewParallel(config.ProviderConfig{Key: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	res := p.Search(context.Background(), "q", 5*time.Second)
	require.Empty(t, res.Error)
	assert.Equal(t, "first excerpt second excerpt", res.Answer)
	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, res.Citations)
	assert.Equal(t, 0.005, res.CostUSD)
}

func TestParallelSearchExplicitAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"answer": "direct answer", "results": [{"url": "https://a.example"}]}`))
	}))
	defer server.Close()

	p, err := NewParallel(config.ProviderConfig{Key: "k", Endpoint: server.URL})
	require.NoError(t, err)

	res := p.Search(context.Background(), "q", 5*time.Second)
	require.Empty(t, res.Error)
	assert.Equal(t, "direct answer", res.Answer)
	assert.Equal(t, []string{"https://a.example"}, res.Citations)
}

func TestBraveSearchSummarizer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Subscription-Token"))
		assert.Equal(t, "capital of France", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("summary"))
		w.Write([]byte(`{
			"summarizer": {
				"summary": "Paris.",
				"sources": [{"url": "https://summarized.example"}, "https://plain.example"]
			},
			"web": {"results": [
				{"url": "https://a.example", "description": "desc a"},
				{"url": "https://b.example", "title": "title b"}
			]}
		}`))
	}))
	defer server.Close()

	p, err := NewBrave(config.ProviderConfig{Key: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	res := p.Search(context.Background(), "capital of France", 5*time.Second)
	require.Empty(t, res.Error)
	assert.Equal(t, "Paris.", res.Answer)
	assert.Equal(t, []string{
		"https://summarized.example",
		"https://plain.example",
		"https://a.example",
		"https://b.example",
	}, res.Citations)
}

func TestBraveSearchSnippetFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [
			{"url": "https://a.example", "description": "first  result"},
			{"url": "https://b.example", "description": "second result"},
			{"url": "https://c.example", "description": "third result"}
		]}`))
	}))
	defer server.Close()

	p, err := NewBrave(config.ProviderConfig{Key: "k", Endpoint: server.URL})
	require.NoError(t, err)

	res := p.Search(context.Background(), "q", 5*time.Second)
	require.Empty(t, res.Error)
	assert.Equal(t, "first result second result", res.Answer)
	assert.Len(t, res.Citations, 3)
}

func TestLinkupSearchEnvelopes(t *testing.T) {
	for _, envelope := range []string{"results", "data", "documents", "items"} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			w.Write([]byte(`{"` + envelope + `": [{"link": "https://a.example", "snippet": "only snippet"}]}`))
		}))

		p, err := NewLinkup(config.ProviderConfig{Key: "test-key", Endpoint: server.URL})
		require.NoError(t, err)

		res := p.Search(context.Background(), "q", 5*time.Second)
		require.Empty(t, res.Error, envelope)
		assert.Equal(t, "only snippet", res.Answer, envelope)
		assert.Equal(t, []string{"https://a.example"}, res.Citations, envelope)
		server.Close()
	}
}

func TestTavilySearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{
			"answer": "42",
			"results": [{"url": "https://a.example"}, {"url": "https://b.example"}]
		}`))
	}))
	defer server.Close()

	p, err := NewTavily(config.TavilyConfig{Key: "test-key", Endpoint: server.URL})
	require.NoError(t, err)

	res := p.Search(context.Background(), "q", 5*time.Second)
	require.Empty(t, res.Error)
	assert.Equal(t, "42", res.Answer)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, res.Citations)
	assert.Zero(t, res.CostUSD)
}

func TestTavilyCostModes(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TavilyConfig
		want float64
	}{
		{"free default", config.TavilyConfig{Key: "k"}, 0},
		{"paid flat rate", config.TavilyConfig{Key: "k", CostMode: "paid"}, 0.008},
		{"paid case insensitive", config.TavilyConfig{Key: "k", CostMode: " Paid "}, 0.008},
		{"override wins", config.TavilyConfig{Key: "k", CostMode: "paid", CostPerQuery: 0.002}, 0.002},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewTavily(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.CostPerQuery())
		})
	}
}
