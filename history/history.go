// Package history persists one row per report run in a local sqlite
// file. The store is advisory: when it cannot be opened or written the
// pipeline logs a warning and carries on, so a missing or corrupt file
// never blocks a report.
package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"homereport/logger"
	"homereport/models"

	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	kind TEXT NOT NULL,
	run_at TIMESTAMP NOT NULL,
	commits_last_day INTEGER NOT NULL DEFAULT 0,
	commits_last_week INTEGER NOT NULL DEFAULT 0,
	delivered BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_runs_kind_run_at ON runs (kind, run_at);
`

// Store is the run-history database.
type Store struct {
	conn *sqlx.DB
}

// Open opens (and if needed creates) the history database at path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseConnection, err)
	}

	// The store is touched once per short-lived invocation.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: failed to apply schema: %v", ErrDatabaseConnection, err)
	}

	logger.Info("Run history opened", zap.String("path", path))
	return &Store{conn: conn}, nil
}

// InsertRun records one completed report run.
func (s *Store) InsertRun(ctx context.Context, run models.RunRecord) error {
	if run.Kind == "" {
		return fmt.Errorf("%w: run kind cannot be empty", ErrInvalidInput)
	}
	if run.RunAt.IsZero() {
		return fmt.Errorf("%w: run time cannot be zero", ErrInvalidInput)
	}

	query := `
		INSERT INTO runs (kind, run_at, commits_last_day, commits_last_week, delivered)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.conn.ExecContext(ctx, query,
		run.Kind, run.RunAt, run.CommitsLastDay, run.CommitsLastWeek, run.Delivered,
	); err != nil {
		return fmt.Errorf("failed to record %s run: %w", run.Kind, err)
	}

	logger.Debug("Run recorded",
		zap.String("kind", run.Kind),
		zap.Time("run_at", run.RunAt),
		zap.Bool("delivered", run.Delivered))
	return nil
}

// LastRun returns the most recent recorded run of the given kind.
func (s *Store) LastRun(ctx context.Context, kind string) (*models.RunRecord, error) {
	if kind == "" {
		return nil, fmt.Errorf("%w: run kind cannot be empty", ErrInvalidInput)
	}

	var run models.RunRecord
	query := `
		SELECT id, kind, run_at, commits_last_day, commits_last_week, delivered, created_at
		FROM runs
		WHERE kind = ?
		ORDER BY run_at DESC
		LIMIT 1
	`
	if err := s.conn.GetContext(ctx, &run, query, kind); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: kind %s", ErrNoRuns, kind)
		}
		return nil, fmt.Errorf("failed to get last %s run: %w", kind, err)
	}
	return &run, nil
}

// RecentRuns returns up to limit runs of the given kind, newest first.
func (s *Store) RecentRuns(ctx context.Context, kind string, limit int) ([]models.RunRecord, error) {
	if kind == "" {
		return nil, fmt.Errorf("%w: run kind cannot be empty", ErrInvalidInput)
	}
	if limit < 1 {
		limit = 10
	}

	var runs []models.RunRecord
	query := `
		SELECT id, kind, run_at, commits_last_day, commits_last_week, delivered, created_at
		FROM runs
		WHERE kind = ?
		ORDER BY run_at DESC
		LIMIT ?
	`
	if err := s.conn.SelectContext(ctx, &runs, query, kind, limit); err != nil {
		return nil, fmt.Errorf("failed to list %s runs: %w", kind, err)
	}
	return runs, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
