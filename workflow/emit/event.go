package emit

// Event is an observability record emitted at each step boundary of a
// session: stage entry and completion, suspension, resume, terminal outcome,
// and failures. Events exist for presentation and monitoring only; the
// engine never reads them back and correctness does not depend on them.
type Event struct {
	// SessionID identifies the session that emitted this event.
	SessionID string

	// Step is the engine tick number within the session (1-indexed).
	// Zero for session-level events such as start and resume.
	Step int

	// Stage names the workflow stage the event refers to
	// (e.g. "data_gathering", "synthesis", "human_review").
	// Empty for session-level events.
	Stage string

	// Msg is a short human-readable description of what happened.
	Msg string

	// Meta carries additional structured payload. Common keys:
	//   - "prompt": suspension prompt text
	//   - "outcome": terminal outcome
	//   - "error": failure details
	//   - "duration_ms": stage execution duration
	Meta map[string]interface{}
}
