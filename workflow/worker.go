package workflow

import "context"

// Worker is a processing stage in the workflow. It receives a read-only view
// of the current session state and returns a partial state update (a delta to
// be merged by the reducer) or an error.
//
// Workers never decide routing; the router alone chooses the next stage from
// accumulated state. A worker that fails returns a nil-valued delta and an
// error, and the engine leaves the session at its pre-step checkpoint so the
// same stage can be retried by a later call.
//
// Type parameter S is the session state type shared across the workflow.
type Worker[S any] interface {
	// Run executes the stage against the given state and returns the
	// partial update it is responsible for. Blocking I/O (market data,
	// LLM calls) belongs here and must respect ctx.
	Run(ctx context.Context, state S) (S, error)
}

// WorkerFunc adapts a plain function to the Worker interface.
type WorkerFunc[S any] func(ctx context.Context, state S) (S, error)

// Run implements Worker.
func (f WorkerFunc[S]) Run(ctx context.Context, state S) (S, error) {
	return f(ctx, state)
}

// SuspendPoint is a stage that cannot complete without input from outside
// the process. When the router directs execution to a suspend point, the
// engine checkpoints and halts, handing the prompt to the caller; it runs no
// further steps until Resume is called with an input value.
//
// Apply re-executes the step with the externally supplied input bound. It
// returns the resulting partial update, or an *InputError when the input is
// not acceptable; on an *InputError the engine re-suspends with a corrective
// prompt and no state advances.
type SuspendPoint[S any] interface {
	// Prompt renders the question to present to the outside world.
	Prompt(state S) string

	// Apply validates the external input against the current state and
	// returns the partial update binding it.
	Apply(state S, input string) (S, error)
}
