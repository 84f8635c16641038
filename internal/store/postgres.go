package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/searchbench/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	query_set   TEXT NOT NULL,
	judge_model TEXT NOT NULL,
	query_count INTEGER NOT NULL,
	providers   TEXT[] NOT NULL,
	graded      JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_query_set ON runs(query_set);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveRun(ctx context.Context, graded model.GradedRun, querySet, judgeModel string) error {
	payload, err := json.Marshal(graded)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal graded run")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, started_at, query_set, judge_model, query_count, providers, graded)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		graded.Run.ID,
		graded.Run.StartedAt.UTC(),
		querySet,
		judgeModel,
		graded.Run.QueryCount,
		graded.Run.Providers,
		payload,
	)
	return eris.Wrapf(err, "postgres: insert run %s", graded.Run.ID)
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.GradedRun, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT graded FROM runs WHERE id = $1`, runID,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("postgres: run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}

	var graded model.GradedRun
	if err := json.Unmarshal(payload, &graded); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal run %s", runID)
	}
	return &graded, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, started_at, query_set, judge_model, query_count, providers
		 FROM runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var summary RunSummary
		if err := rows.Scan(&summary.ID, &summary.StartedAt, &summary.QuerySet,
			&summary.JudgeModel, &summary.QueryCount, &summary.Providers); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, summary)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}
