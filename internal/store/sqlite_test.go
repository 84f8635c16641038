package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/searchbench/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func gradedRun(id string, startedAt time.Time) model.GradedRun {
	query := model.Query{ID: "factual_01", Text: "Capital of France?", Expected: []string{"Paris"}}
	return model.GradedRun{
		Run: model.RunResult{
			ID:         id,
			StartedAt:  startedAt,
			QueryCount: 1,
			Providers:  []string{"exa", "tavily"},
			Results: []model.QueryResult{{
				Query: query,
				Results: map[string]model.SearchResult{
					"exa": {Answer: "Paris", LatencyMS: 120, CostUSD: 0.01},
				},
			}},
		},
		Queries: []model.GradedQuery{{
			Query: query,
			Judgments: map[string]model.JudgeResult{
				"exa": {Label: model.LabelCorrect, Passed: true, Explanation: "right"},
			},
		}},
	}
}

func TestSQLiteSaveAndGetRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	graded := gradedRun("run-1", time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC))
	require.NoError(t, s.SaveRun(ctx, graded, "public", "test-model"))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, graded.Run.ID, got.Run.ID)
	assert.Equal(t, graded.Run.Providers, got.Run.Providers)
	require.Len(t, got.Queries, 1)
	assert.True(t, got.Queries[0].Judgments["exa"].Passed)
}

func TestSQLiteGetRunNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.SaveRun(ctx, gradedRun("run-1", base), "public", "test-model"))
	require.NoError(t, s.SaveRun(ctx, gradedRun("run-2", base.Add(time.Hour)), "hard", "test-model"))
	require.NoError(t, s.SaveRun(ctx, gradedRun("run-3", base.Add(2*time.Hour)), "public", "test-model"))

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// newest first
	assert.Equal(t, "run-3", runs[0].ID)
	assert.Equal(t, "run-2", runs[1].ID)
	assert.Equal(t, "hard", runs[1].QuerySet)
	assert.Equal(t, []string{"exa", "tavily"}, runs[0].Providers)
	assert.Equal(t, 1, runs[0].QueryCount)

	all, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSQLiteMigrateIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	assert.NoError(t, s.Migrate(context.Background()))
}
