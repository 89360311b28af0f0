package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore is a MySQL/MariaDB implementation of Store[S].
//
// Suited to deployments where sessions are driven from more than one host
// and checkpoints must live in a shared database. The upsert-by-primary-key
// write gives row-level serialization per session, so two drivers racing on
// the same session ID cannot interleave a partial update.
//
// Never hardcode credentials; pass a DSN built from the environment:
//
//	store, err := NewMySQLStore[State](os.Getenv("MYSQL_DSN"))
//
// Type parameter S is the session state type (must be JSON-serializable).
type MySQLStore[S any] struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewMySQLStore creates a MySQL-backed store from a DSN such as
// "user:pass@tcp(localhost:3306)/stockintel?parseTime=true".
// The schema is created on first use.
func NewMySQLStore[S any](dsn string) (*MySQLStore[S], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	s := &MySQLStore[S]{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (m *MySQLStore[S]) createTables(ctx context.Context) error {
	table := `
		CREATE TABLE IF NOT EXISTS session_checkpoints (
			session_id VARCHAR(64) NOT NULL PRIMARY KEY,
			status VARCHAR(32) NOT NULL,
			state JSON NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			INDEX idx_checkpoints_status (status)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
	`
	if _, err := m.db.ExecContext(ctx, table); err != nil {
		return fmt.Errorf("failed to create session_checkpoints table: %w", err)
	}
	return nil
}

// Save persists a checkpoint, replacing any previous one for the session.
func (m *MySQLStore[S]) Save(ctx context.Context, cp Checkpoint[S]) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	stateJSON, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	query := `
		INSERT INTO session_checkpoints (session_id, status, state, updated_at)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			state = VALUES(state),
			updated_at = VALUES(updated_at)
	`
	_, err = m.db.ExecContext(ctx, query, cp.SessionID, cp.Status, string(stateJSON), cp.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Load returns the checkpoint for the session, or ErrNotFound.
func (m *MySQLStore[S]) Load(ctx context.Context, sessionID string) (Checkpoint[S], error) {
	var cp Checkpoint[S]

	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return cp, fmt.Errorf("store is closed")
	}
	m.mu.RUnlock()

	query := `
		SELECT session_id, status, state, updated_at
		FROM session_checkpoints
		WHERE session_id = ?
	`
	var stateJSON string
	err := m.db.QueryRowContext(ctx, query, sessionID).Scan(&cp.SessionID, &cp.Status, &stateJSON, &cp.UpdatedAt)
	if err == sql.ErrNoRows {
		return cp, ErrNotFound
	}
	if err != nil {
		return cp, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if err := json.Unmarshal([]byte(stateJSON), &cp.State); err != nil {
		return cp, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return cp, nil
}

// Close releases the connection pool. Subsequent operations fail.
func (m *MySQLStore[S]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	return m.db.Close()
}

// Ping verifies database connectivity.
func (m *MySQLStore[S]) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("store is closed")
	}
	return m.db.PingContext(ctx)
}
