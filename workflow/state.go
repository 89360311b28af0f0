package workflow

import (
	"encoding/json"
	"fmt"
)

// Reducer merges a worker's partial update into the accumulated session
// state. It must be deterministic and must treat the state's message log as
// append-only: new entries are appended, never rewritten or reordered.
// Set-once fields (research, analysis, decision) are only written when
// previously absent.
type Reducer[S any] func(prev, delta S) S

// clone creates a deep copy of state via a JSON round-trip.
//
// The engine clones state into every checkpoint so the persisted record
// never aliases slices or pointers the run loop keeps mutating. Works for
// any JSON-serializable state; unexported fields are dropped.
func clone[S any](state S) (S, error) {
	var copied S

	data, err := json.Marshal(state)
	if err != nil {
		return copied, fmt.Errorf("failed to marshal state: %w", err)
	}
	if err := json.Unmarshal(data, &copied); err != nil {
		return copied, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return copied, nil
}
