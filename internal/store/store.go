// Package store archives graded benchmark runs in SQLite or Postgres so
// past runs stay queryable after their HTML reports rotate.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/searchbench/internal/config"
	"github.com/sells-group/searchbench/internal/model"
)

// RunSummary is the listing row for an archived run.
type RunSummary struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	QuerySet   string    `json:"query_set"`
	JudgeModel string    `json:"judge_model"`
	QueryCount int       `json:"query_count"`
	Providers  []string  `json:"providers"`
}

// Store is the run archive.
type Store interface {
	SaveRun(ctx context.Context, graded model.GradedRun, querySet, judgeModel string) error
	GetRun(ctx context.Context, runID string) (*model.GradedRun, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)

	Migrate(ctx context.Context) error
	Close() error
}

// Open constructs the store named by the config driver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case "", "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "searchbench.db"
		}
		return NewSQLite(dsn)
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("store: postgres driver requires store.database_url")
		}
		return NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}
}

const defaultListLimit = 20
