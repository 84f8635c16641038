// Package runner executes the query x provider matrix and aggregates
// per-provider performance stats.
package runner

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/searchbench/internal/config"
	"github.com/sells-group/searchbench/internal/model"
	"github.com/sells-group/searchbench/internal/provider"
	"github.com/sells-group/searchbench/internal/stats"
)

// DefaultQueryConcurrency bounds how many queries are in flight at once.
// Within a query every provider is hit concurrently, so the effective
// request parallelism is queries x providers.
const DefaultQueryConcurrency = 2

// Runner drives one benchmark execution across a fixed provider set.
type Runner struct {
	providers   []provider.Searcher
	cfg         *config.Config
	concurrency int
}

func New(providers []provider.Searcher, cfg *config.Config) *Runner {
	concurrency := cfg.Run.QueryConcurrency
	if concurrency < 1 {
		concurrency = DefaultQueryConcurrency
	}
	return &Runner{providers: providers, cfg: cfg, concurrency: concurrency}
}

// Run executes every query against every provider. Individual provider
// failures land in their SearchResult; Run itself only fails on a canceled
// context.
func (r *Runner) Run(ctx context.Context, queries []model.Query) (model.RunResult, error) {
	started := time.Now()
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	zap.L().Info("benchmark run starting",
		zap.Int("queries", len(queries)),
		zap.Strings("providers", names))

	results := make([]model.QueryResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, query := range queries {
		g.Go(func() error {
			results[i] = r.runQuery(gctx, query)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.RunResult{}, err
	}

	run := model.RunResult{
		ID:            uuid.NewString(),
		StartedAt:     started.UTC(),
		DurationS:     time.Since(started).Seconds(),
		QueryCount:    len(queries),
		Providers:     names,
		Results:       results,
		ProviderStats: summarize(results, names),
	}
	zap.L().Info("benchmark run finished",
		zap.String("run_id", run.ID),
		zap.Float64("duration_s", run.DurationS))
	return run, nil
}

func (r *Runner) runQuery(ctx context.Context, query model.Query) model.QueryResult {
	out := make(map[string]model.SearchResult, len(r.providers))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, p := range r.providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := r.searchOne(ctx, p, query)
			mu.Lock()
			out[p.Name()] = res
			mu.Unlock()
		}()
	}
	wg.Wait()
	return model.QueryResult{Query: query, Results: out}
}

// searchOne isolates a single provider call. Adapters capture their own
// failures, so the recover here only guards against adapter bugs escaping
// as panics and taking the run down.
func (r *Runner) searchOne(ctx context.Context, p provider.Searcher, query model.Query) (res model.SearchResult) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("provider panicked",
				zap.String("provider", p.Name()),
				zap.String("query_id", query.ID),
				zap.Any("panic", rec))
			res = model.SearchResult{Error: fmt.Sprintf("panic: %v", rec)}
		}
	}()
	timeout := r.cfg.TimeoutFor(p.Name())
	res = p.Search(ctx, query.Text, timeout)
	if res.Error != "" {
		zap.L().Warn("provider call failed",
			zap.String("provider", p.Name()),
			zap.String("query_id", query.ID),
			zap.String("error", res.Error),
			zap.Bool("timed_out", res.TimedOut))
	}
	return res
}

// summarize computes per-provider latency, cost, and failure aggregates.
// Latency stats cover successful calls only; cost covers everything.
func summarize(results []model.QueryResult, providers []string) map[string]model.ProviderStats {
	out := make(map[string]model.ProviderStats, len(providers))
	for _, name := range providers {
		var latencies []int
		var errors, timeouts int
		var totalCost float64
		for _, item := range results {
			res, ok := item.Results[name]
			if !ok {
				continue
			}
			if res.Error != "" {
				errors++
			} else {
				latencies = append(latencies, res.LatencyMS)
			}
			if res.TimedOut {
				timeouts++
			}
			totalCost += res.CostUSD
		}
		out[name] = model.ProviderStats{
			AvgLatencyMS: stats.Mean(latencies),
			LatencyP50MS: stats.Percentile(latencies, 50),
			LatencyP95MS: stats.Percentile(latencies, 95),
			LatencyP99MS: stats.Percentile(latencies, 99),
			TotalCostUSD: math.Round(totalCost*1e6) / 1e6,
			Errors:       errors,
			Timeouts:     timeouts,
		}
	}
	return out
}
