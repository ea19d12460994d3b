// Package history keeps a SQLite ledger of build passes.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one namespace pass of one build.
type Entry struct {
	ID        int64
	BuildID   string
	Namespace string
	Outcome   string
	Written   int
	Pruned    int
	Warnings  int
	Failed    int
	StartedAt time.Time
	Duration  time.Duration
}

// Store implements the ledger on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the ledger at dbPath. Use ":memory:" for an
// in-memory database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS passes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		namespace TEXT NOT NULL,
		outcome TEXT NOT NULL,
		written INTEGER NOT NULL,
		pruned INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_passes_build_id ON passes(build_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append records a pass and returns its row id.
func (s *Store) Append(ctx context.Context, e Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO passes (build_id, namespace, outcome, written, pruned, warnings, failed, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.BuildID, e.Namespace, e.Outcome, e.Written, e.Pruned, e.Warnings, e.Failed,
		e.StartedAt.UnixMilli(), e.Duration.Milliseconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert pass: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.query(ctx, selectColumns+" ORDER BY id DESC LIMIT ?", limit)
}

// ByBuild returns the entries of one build in insertion order.
func (s *Store) ByBuild(ctx context.Context, buildID string) ([]Entry, error) {
	return s.query(ctx, selectColumns+" WHERE build_id = ? ORDER BY id", buildID)
}

const selectColumns = `SELECT id, build_id, namespace, outcome, written, pruned, warnings, failed, started_at, duration_ms FROM passes`

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var startedMS, durationMS int64
		if err := rows.Scan(&e.ID, &e.BuildID, &e.Namespace, &e.Outcome, &e.Written, &e.Pruned,
			&e.Warnings, &e.Failed, &startedMS, &durationMS); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		e.StartedAt = time.UnixMilli(startedMS)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return entries, nil
}
