// Package emit provides pluggable observability for workflow execution.
package emit

// Emitter receives observability events from the execution engine.
//
// Implementations must be safe for concurrent use when multiple sessions
// are driven from one process, must not block workflow execution, and must
// not panic. Failures in the emission path are swallowed or logged
// internally; they never affect session state.
type Emitter interface {
	Emit(event Event)
}
