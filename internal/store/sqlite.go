package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/searchbench/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  DATETIME NOT NULL,
	query_set   TEXT NOT NULL,
	judge_model TEXT NOT NULL,
	query_count INTEGER NOT NULL,
	providers   TEXT NOT NULL,
	graded      TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_query_set ON runs(query_set);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveRun(ctx context.Context, graded model.GradedRun, querySet, judgeModel string) error {
	payload, err := json.Marshal(graded)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal graded run")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, query_set, judge_model, query_count, providers, graded)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		graded.Run.ID,
		graded.Run.StartedAt.UTC(),
		querySet,
		judgeModel,
		graded.Run.QueryCount,
		strings.Join(graded.Run.Providers, ","),
		string(payload),
	)
	return eris.Wrapf(err, "sqlite: insert run %s", graded.Run.ID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.GradedRun, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT graded FROM runs WHERE id = ?`, runID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}

	var graded model.GradedRun
	if err := json.Unmarshal([]byte(payload), &graded); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal run %s", runID)
	}
	return &graded, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, query_set, judge_model, query_count, providers
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var summary RunSummary
		var startedAt time.Time
		var providers string
		if err := rows.Scan(&summary.ID, &startedAt, &summary.QuerySet,
			&summary.JudgeModel, &summary.QueryCount, &providers); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		summary.StartedAt = startedAt.UTC()
		summary.Providers = splitProviders(providers)
		runs = append(runs, summary)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func splitProviders(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
