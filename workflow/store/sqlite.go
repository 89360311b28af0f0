package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a SQLite implementation of Store[S].
//
// A single-file database with zero setup, suited to local runs where a
// suspended session must survive a process restart. WAL mode allows
// concurrent readers; SQLite's single-writer model plus the upsert-by-key
// schema gives the per-session write serialization the Store contract
// requires.
//
// Type parameter S is the session state type (must be JSON-serializable).
type SQLiteStore[S any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewSQLiteStore opens (or creates) a SQLite-backed store at path.
// Use ":memory:" for an in-memory database in tests.
//
// The store enables WAL mode, sets a busy timeout so writers wait for locks
// instead of failing, and creates the schema on first use.
func NewSQLiteStore[S any](path string) (*SQLiteStore[S], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &SQLiteStore[S]{db: db, path: path}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore[S]) createTables(ctx context.Context) error {
	table := `
		CREATE TABLE IF NOT EXISTS session_checkpoints (
			session_id TEXT NOT NULL PRIMARY KEY,
			status TEXT NOT NULL,
			state TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)
	`
	if _, err := s.db.ExecContext(ctx, table); err != nil {
		return fmt.Errorf("failed to create session_checkpoints table: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_checkpoints_status ON session_checkpoints(status)"); err != nil {
		return fmt.Errorf("failed to create idx_checkpoints_status: %w", err)
	}
	return nil
}

// Save persists a checkpoint, replacing any previous one for the session.
// The write is a single upsert statement, so it is atomic: a crash mid-save
// leaves either the old checkpoint or the new one, never a mix.
func (s *SQLiteStore[S]) Save(ctx context.Context, cp Checkpoint[S]) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	s.mu.RUnlock()

	stateJSON, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	query := `
		INSERT INTO session_checkpoints (session_id, status, state, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			status = excluded.status,
			state = excluded.state,
			updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query, cp.SessionID, cp.Status, string(stateJSON), cp.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load returns the checkpoint for the session, or ErrNotFound.
func (s *SQLiteStore[S]) Load(ctx context.Context, sessionID string) (Checkpoint[S], error) {
	var cp Checkpoint[S]

	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return cp, fmt.Errorf("store is closed")
	}
	s.mu.RUnlock()

	query := `
		SELECT session_id, status, state, updated_at
		FROM session_checkpoints
		WHERE session_id = ?
	`
	var stateJSON, updatedAt string
	err := s.db.QueryRowContext(ctx, query, sessionID).Scan(&cp.SessionID, &cp.Status, &stateJSON, &updatedAt)
	if err == sql.ErrNoRows {
		return cp, ErrNotFound
	}
	if err != nil {
		return cp, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if err := json.Unmarshal([]byte(stateJSON), &cp.State); err != nil {
		return cp, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	cp.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return cp, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return cp, nil
}

// Close releases the database connection. Subsequent operations fail.
func (s *SQLiteStore[S]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
