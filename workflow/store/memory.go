package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemStore is an in-memory implementation of Store[S].
//
// Designed for tests and single-process development runs. Data is lost when
// the process exits, so suspended sessions cannot survive a restart; use
// SQLiteStore or another durable backend for that.
//
// MemStore is thread-safe. Checkpoints are stored as serialized JSON so a
// loaded checkpoint never aliases memory still owned by a caller, matching
// the isolation behavior of the durable backends.
type MemStore[S any] struct {
	mu          sync.RWMutex
	checkpoints map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore[S any]() *MemStore[S] {
	return &MemStore[S]{
		checkpoints: make(map[string][]byte),
	}
}

// Save persists a checkpoint, overwriting any previous one for the session.
// The mutex serializes writes per key.
func (m *MemStore[S]) Save(_ context.Context, cp Checkpoint[S]) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints[cp.SessionID] = data
	return nil
}

// Load returns the most recent checkpoint for the session, or ErrNotFound.
func (m *MemStore[S]) Load(_ context.Context, sessionID string) (Checkpoint[S], error) {
	m.mu.RLock()
	data, exists := m.checkpoints[sessionID]
	m.mu.RUnlock()

	var cp Checkpoint[S]
	if !exists {
		return cp, ErrNotFound
	}
	if err := json.Unmarshal(data, &cp); err != nil {
		return cp, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return cp, nil
}

// Len reports the number of stored sessions. Useful in tests.
func (m *MemStore[S]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.checkpoints)
}
