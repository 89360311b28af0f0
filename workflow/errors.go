package workflow

import "errors"

// ErrNoRoute indicates the router found no matching row for the current
// state. The router table is total over reachable states, so a non-match
// means a bug in the table or a corrupted checkpoint. The engine aborts the
// session rather than guess a route.
var ErrNoRoute = errors.New("no route for current state")

// ErrNotSuspended is returned by Resume when the session exists but is not
// waiting at a suspend point — typically because it already terminated, or
// because it crashed mid-step and should be restarted rather than resumed.
var ErrNotSuspended = errors.New("session is not suspended")

// ErrUnknownSession is returned by Resume when no checkpoint exists for the
// given session ID.
var ErrUnknownSession = errors.New("unknown session")

// StepError reports a worker failure. The failing stage is identified so
// callers can surface it; the session remains at its pre-step checkpoint and
// the same stage runs again on the next attempt.
type StepError struct {
	// Step is the stage that failed.
	Step string

	// Err is the underlying worker error.
	Err error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return "stage " + e.Step + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// InputError reports that an external input supplied on resume was not
// acceptable. It is recoverable: the engine re-suspends with a corrective
// prompt and no state advances.
type InputError struct {
	// Message explains what was wrong with the input.
	Message string
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return e.Message
}

// EngineError reports a configuration or infrastructure failure inside the
// engine itself: missing wiring, checkpoint store failures, exceeded limits.
type EngineError struct {
	Message string
	Code    string
	Cause   error
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *EngineError) Unwrap() error {
	return e.Cause
}
