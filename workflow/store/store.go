// Package store provides durable persistence for session checkpoints.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no checkpoint exists for a session ID.
var ErrNotFound = errors.New("not found")

// Checkpoint is the persisted record for one session: the full session state
// plus the engine-owned position marker. A checkpoint write always captures
// the entire record atomically; there is no partial persistence.
//
// Status is the single source of truth for where a session resumes. Workers
// never write it; only the engine does, at step boundaries.
//
// Type parameter S is the session state type (must be JSON-serializable).
type Checkpoint[S any] struct {
	// SessionID is the checkpoint key. One checkpoint per session;
	// saves overwrite by key.
	SessionID string `json:"session_id"`

	// Status is the workflow position at the time of the save
	// (e.g. "start", "synthesis", "human_review", "approved").
	Status string `json:"status"`

	// State is the full accumulated session state.
	State S `json:"state"`

	// UpdatedAt records when this checkpoint was written.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists session checkpoints.
//
// Contract:
//   - Save persists the full checkpoint atomically and durably, overwriting
//     any previous checkpoint for the same session ID.
//   - Load returns the most recently saved checkpoint, or ErrNotFound.
//   - A checkpoint saved then loaded must reproduce an identical record,
//     including absent optional fields inside the state.
//   - Writes to the same session ID must be serialized by the store so two
//     racing drivers cannot interleave a partial update. This is a
//     correctness requirement, not an optimization.
//
// Implementations: MemStore (testing, single process), SQLiteStore (local
// persistence), MySQLStore (shared database), RedisStore (key-value).
type Store[S any] interface {
	Save(ctx context.Context, cp Checkpoint[S]) error
	Load(ctx context.Context, sessionID string) (Checkpoint[S], error)
}
