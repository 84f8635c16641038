package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/searchbench/internal/judge"
	"github.com/sells-group/searchbench/internal/model"
	"github.com/sells-group/searchbench/internal/provider"
	"github.com/sells-group/searchbench/internal/report"
	"github.com/sells-group/searchbench/internal/runner"
	"github.com/sells-group/searchbench/internal/store"
	"github.com/sells-group/searchbench/pkg/anthropic"
)

const evidenceMode = "strict"

// parseProviders expands the --providers flag into concrete provider names.
func parseProviders(list string) ([]string, error) {
	list = strings.TrimSpace(list)
	if list == "" || list == "all" {
		return provider.Names(), nil
	}

	known := make(map[string]bool)
	for _, name := range provider.Names() {
		known[name] = true
	}

	var names []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(list, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" || seen[name] {
			continue
		}
		if !known[name] {
			return nil, eris.Errorf("unknown provider %q (choose from %s)", name, strings.Join(provider.Names(), ", "))
		}
		seen[name] = true
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, eris.New("no providers selected")
	}
	sort.Strings(names)
	return names, nil
}

func initProviders(names []string) ([]provider.Searcher, error) {
	searchers := make([]provider.Searcher, 0, len(names))
	for _, name := range names {
		s, err := provider.New(name, cfg)
		if err != nil {
			return nil, err
		}
		searchers = append(searchers, s)
	}
	return searchers, nil
}

func newJudge() (*judge.Judge, error) {
	if cfg.Judge.Key == "" {
		return nil, eris.New("judge.key not set (SEARCHBENCH_JUDGE_KEY)")
	}
	client := anthropic.NewClient(cfg.Judge.Key)
	return judge.New(client, cfg.Judge.Model, cfg.Judge.Concurrency), nil
}

// executeBenchmark runs the full pipeline: preflight, search matrix, grading,
// terminal tables, HTML report, archive save. Returns the report paths.
func executeBenchmark(ctx context.Context, searchers []provider.Searcher, queries []model.Query, querySet, outputDir string) (report.Paths, error) {
	j, err := newJudge()
	if err != nil {
		return report.Paths{}, err
	}
	if err := j.Preflight(ctx); err != nil {
		return report.Paths{}, err
	}

	run, err := runner.New(searchers, cfg).Run(ctx, queries)
	if err != nil {
		return report.Paths{}, err
	}

	graded, err := j.GradeRun(ctx, run)
	if err != nil {
		return report.Paths{}, err
	}

	meta := make(map[string]report.ProviderMeta, len(searchers))
	for _, s := range searchers {
		meta[s.Name()] = report.ProviderMeta{
			Endpoint:    s.Endpoint(),
			TimeoutUsed: cfg.TimeoutSecondsFor(s.Name()),
		}
	}

	summaries := report.BuildSummaries(graded, meta)
	if table := renderTable(summaryHeaders, summaryRows(summaries)); table != "" {
		fmt.Println("Summary")
		fmt.Println(table)
	}

	breakdown := report.BuildErrorBreakdown(graded.Run)
	if rows := errorRows(summaries, breakdown); len(rows) > 0 {
		fmt.Println("Errors")
		fmt.Println(renderTable(errorHeaders, rows))
	}

	paths, err := report.WriteReport(graded, querySet, j.Model(), meta, outputDir, evidenceMode)
	if err != nil {
		return report.Paths{}, err
	}

	archiveRun(ctx, graded, querySet, j.Model())
	return paths, nil
}

// archiveRun saves the graded run to the store. Archive failures are logged,
// not fatal: the report on disk is the primary artifact.
func archiveRun(ctx context.Context, graded model.GradedRun, querySet, judgeModel string) {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		zap.L().Warn("run archive unavailable", zap.Error(err))
		return
	}
	defer st.Close() //nolint:errcheck

	if err := st.Migrate(ctx); err != nil {
		zap.L().Warn("run archive migrate failed", zap.Error(err))
		return
	}
	if err := st.SaveRun(ctx, graded, querySet, judgeModel); err != nil {
		zap.L().Warn("run archive save failed", zap.Error(err))
		return
	}
	zap.L().Info("run archived", zap.String("run_id", graded.Run.ID))
}
