// Package runlog persists a history of pipeline runs in SQLite.
package runlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one pipeline run's outcome.
type Record struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Category   string    `json:"category"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Status     string    `json:"status"` // success|failed
	Error      string    `json:"error,omitempty"`
}

// Store is a SQLite-backed append-only run history.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (and if necessary creates) the run history database.
// Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create runlog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		category TEXT NOT NULL,
		title TEXT NOT NULL,
		slug TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append adds a run record to the store.
func (s *Store) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started_at, duration_ms, category, title, slug, status, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.StartedAt.Unix(), rec.DurationMS, rec.Category, rec.Title, rec.Slug, rec.Status, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns the most recent runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started_at, duration_ms, category, title, slug, status, error FROM runs ORDER BY started_at DESC, id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var startedUnix int64
		var errText sql.NullString
		if err := rows.Scan(&rec.ID, &startedUnix, &rec.DurationMS, &rec.Category, &rec.Title, &rec.Slug, &rec.Status, &errText); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt = time.Unix(startedUnix, 0).UTC()
		rec.Error = errText.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the store and releases resources.
func (s *Store) Close() error {
	return s.db.Close()
}
