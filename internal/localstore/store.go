// Package localstore provides the durable on-device store for oscar.
//
// The store is an embedded SQLite database (ncruces/go-sqlite3,
// CGO-free) holding one table per record collection plus the
// pending-write queue. It is the single copy the UI reads at all
// times; the remote store only becomes authoritative for a record
// once a write there succeeds.
//
// All writes are idempotent upserts: replaying the same record is
// safe, which is what makes login merge and queue drain convergent.
// Persistence failures are never swallowed; they surface as
// StorageError because there is no fallback beneath local storage.
package localstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Store wraps the SQLite database connection.
type Store struct {
	conn *sql.DB
	path string
}

// Open creates a database connection at the specified path.
//
// The database is opened in WAL mode for concurrent reads. If it
// doesn't exist it is created; call InitSchema before first use.
// The caller MUST call Close when done.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{conn: conn, path: path}

	if _, err := s.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := s.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return s, nil
}

// Close closes the database connection after checkpointing the WAL.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.conn = nil
	return nil
}

// InitSchema creates the database schema if it doesn't exist.
// Idempotent; safe to call on every startup.
func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS progress (
		question_id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		last_practiced_at TEXT,
		marked_for_revision INTEGER NOT NULL DEFAULT 0,
		completed_at TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS daily_logs (
		date TEXT PRIMARY KEY,
		count REAL NOT NULL,
		question_ids TEXT,  -- JSON array
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS settings (
		id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,  -- full record JSON
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS test_results (
		id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS question_cache (
		id TEXT PRIMARY KEY,
		payload TEXT NOT NULL,
		fetched_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pending_queue (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		action TEXT NOT NULL,
		payload TEXT NOT NULL,
		enqueued_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_progress_status ON progress(status);
	CREATE INDEX IF NOT EXISTS idx_progress_revision ON progress(marked_for_revision);
	CREATE INDEX IF NOT EXISTS idx_pending_kind ON pending_queue(kind);
	CREATE INDEX IF NOT EXISTS idx_pending_enqueued ON pending_queue(enqueued_at);
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return &StorageError{Op: "init schema", Err: err}
	}

	return nil
}

// timePtrToNull converts a time pointer to a nullable string for SQL.
func timePtrToNull(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

// nullToTimePtr converts a nullable SQL string to a time pointer.
func nullToTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
