// Package workflow provides the orchestration engine: a routing state
// machine over a single session state record, with crash-consistent
// checkpointing and a suspend/resume protocol for human-in-the-loop steps.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stockintel/stockintel/workflow/emit"
	"github.com/stockintel/stockintel/workflow/store"
)

// Suspension is handed to the caller when execution reaches a suspend point.
// The session is checkpointed before the engine returns, so the process may
// exit entirely; Resume with the session ID continues from the store alone.
type Suspension struct {
	// SessionID identifies the suspended session.
	SessionID string

	// Prompt is the question to present to the human.
	Prompt string
}

// Result is the outcome of driving a session: either a terminal outcome
// (Done with Outcome set) or a suspension awaiting external input.
type Result[S any] struct {
	// State is the session state at the point the engine stopped.
	State S

	// Status is the workflow position the session was checkpointed at.
	Status string

	// Done reports whether the session reached a terminal state.
	Done bool

	// Outcome labels the terminal result when Done is true.
	Outcome string

	// Suspension is non-nil when the session halted awaiting input.
	Suspension *Suspension
}

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	maxSteps      int
	initialStatus string
	metrics       *Metrics
}

// WithMaxSteps bounds the number of engine ticks per drive of a session.
// The router table is acyclic for this workflow, so the limit exists only to
// turn a routing bug into a clean error instead of a spin.
func WithMaxSteps(n int) Option {
	return func(cfg *engineConfig) { cfg.maxSteps = n }
}

// WithInitialStatus sets the status recorded on a session's first
// checkpoint, before any stage has run. Default "start".
func WithInitialStatus(status string) Option {
	return func(cfg *engineConfig) { cfg.initialStatus = status }
}

// WithMetrics attaches Prometheus metrics collection to the engine.
func WithMetrics(m *Metrics) Option {
	return func(cfg *engineConfig) { cfg.metrics = m }
}

// Engine drives one session at a time through the workflow: it consults the
// router, executes the chosen stage, merges the partial update via the
// reducer, checkpoints, and repeats until a terminal directive or a
// suspension.
//
// Exactly one stage is active per session at any moment, and all state
// mutation flows through applied worker updates inside the tick loop; the
// session ID is the only state handle exposed outside. Distinct sessions are
// fully isolated and may be driven concurrently, one driver per session.
//
// Type parameter S is the session state type shared across the workflow.
type Engine[S any] struct {
	mu       sync.RWMutex
	router   Router[S]
	reducer  Reducer[S]
	workers  map[string]Worker[S]
	suspends map[string]SuspendPoint[S]
	store    store.Store[S]
	emitter  emit.Emitter
	cfg      engineConfig
}

// New creates an Engine.
//
// router, reducer and st are required (validated on Start/Resume). emitter
// may be nil to disable event emission. Stages are registered afterwards via
// Register and RegisterSuspend.
func New[S any](router Router[S], reducer Reducer[S], st store.Store[S], emitter emit.Emitter, opts ...Option) *Engine[S] {
	cfg := engineConfig{initialStatus: "start"}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Engine[S]{
		router:   router,
		reducer:  reducer,
		workers:  make(map[string]Worker[S]),
		suspends: make(map[string]SuspendPoint[S]),
		store:    st,
		emitter:  emitter,
		cfg:      cfg,
	}
}

// Register adds a worker stage. Stage names must be unique across workers
// and suspend points.
func (e *Engine[S]) Register(step string, w Worker[S]) error {
	if step == "" {
		return &EngineError{Message: "stage name cannot be empty", Code: "EMPTY_STAGE"}
	}
	if w == nil {
		return &EngineError{Message: "worker cannot be nil", Code: "NIL_WORKER"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.workers[step]; exists {
		return &EngineError{Message: "duplicate stage: " + step, Code: "DUPLICATE_STAGE"}
	}
	if _, exists := e.suspends[step]; exists {
		return &EngineError{Message: "duplicate stage: " + step, Code: "DUPLICATE_STAGE"}
	}

	e.workers[step] = w
	return nil
}

// RegisterSuspend adds a suspend point stage.
func (e *Engine[S]) RegisterSuspend(step string, sp SuspendPoint[S]) error {
	if step == "" {
		return &EngineError{Message: "stage name cannot be empty", Code: "EMPTY_STAGE"}
	}
	if sp == nil {
		return &EngineError{Message: "suspend point cannot be nil", Code: "NIL_SUSPEND"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.workers[step]; exists {
		return &EngineError{Message: "duplicate stage: " + step, Code: "DUPLICATE_STAGE"}
	}
	if _, exists := e.suspends[step]; exists {
		return &EngineError{Message: "duplicate stage: " + step, Code: "DUPLICATE_STAGE"}
	}

	e.suspends[step] = sp
	return nil
}

// Start begins a new session with the given ID and initial state.
//
// The initial state is checkpointed before any stage runs, so a worker
// failure on the very first step still leaves a resumable record at the
// starting position. Start then enters the tick loop and returns either a
// terminal Result or a Suspension.
func (e *Engine[S]) Start(ctx context.Context, sessionID string, initial S) (Result[S], error) {
	var zero Result[S]

	if err := e.validate(); err != nil {
		return zero, err
	}
	if sessionID == "" {
		return zero, &EngineError{Message: "session ID cannot be empty", Code: "EMPTY_SESSION_ID"}
	}

	status := e.cfg.initialStatus
	if err := e.checkpoint(ctx, sessionID, status, initial); err != nil {
		return zero, err
	}

	e.emit(emit.Event{SessionID: sessionID, Msg: "session started"})
	e.cfg.metrics.sessionStarted()

	return e.tick(ctx, sessionID, initial, 0)
}

// Resume continues a suspended session with an externally supplied input.
//
// Resumption is checkpoint-driven: the session is reconstructed entirely
// from the store, so it behaves identically whether or not the process that
// suspended it is still alive. The input is validated by the suspend point
// the session is parked at, before any further routing:
//   - valid input: the suspend step's update is applied, checkpointed, and
//     the tick loop continues to the terminal outcome or next suspension.
//   - invalid input (*InputError): the session re-suspends with a corrective
//     prompt and no state advances.
//
// Returns ErrUnknownSession when no checkpoint exists, and ErrNotSuspended
// when the session is not parked at a suspend point (already terminated, or
// interrupted mid-step).
func (e *Engine[S]) Resume(ctx context.Context, sessionID string, input string) (Result[S], error) {
	var zero Result[S]

	if err := e.validate(); err != nil {
		return zero, err
	}

	cp, err := e.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return zero, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
		}
		return zero, &EngineError{Message: "failed to load checkpoint", Code: "STORE_ERROR", Cause: err}
	}

	e.mu.RLock()
	sp, suspended := e.suspends[cp.Status]
	e.mu.RUnlock()

	if !suspended {
		return zero, fmt.Errorf("%w: %s is at %q", ErrNotSuspended, sessionID, cp.Status)
	}

	delta, err := sp.Apply(cp.State, input)
	if err != nil {
		var inputErr *InputError
		if errors.As(err, &inputErr) {
			// No state advance; hand back a corrective prompt.
			e.emit(emit.Event{
				SessionID: sessionID,
				Stage:     cp.Status,
				Msg:       "invalid input",
				Meta:      map[string]interface{}{"error": inputErr.Message},
			})
			e.cfg.metrics.suspended()
			return Result[S]{
				State:  cp.State,
				Status: cp.Status,
				Suspension: &Suspension{
					SessionID: sessionID,
					Prompt:    inputErr.Message + "\n" + sp.Prompt(cp.State),
				},
			}, nil
		}
		return zero, &StepError{Step: cp.Status, Err: err}
	}

	state := e.reducer(cp.State, delta)
	if err := e.checkpoint(ctx, sessionID, cp.Status, state); err != nil {
		return zero, err
	}

	e.emit(emit.Event{SessionID: sessionID, Stage: cp.Status, Msg: "session resumed"})
	e.cfg.metrics.sessionResumed()

	return e.tick(ctx, sessionID, state, 0)
}

// tick runs the engine loop: route, execute, apply, persist, repeat.
func (e *Engine[S]) tick(ctx context.Context, sessionID string, state S, step int) (Result[S], error) {
	var zero Result[S]

	for {
		step++
		if e.cfg.maxSteps > 0 && step > e.cfg.maxSteps {
			return zero, &EngineError{Message: "session exceeded max steps limit", Code: "MAX_STEPS_EXCEEDED"}
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		directive, err := e.router(state)
		if err != nil {
			return zero, fmt.Errorf("%w: %v", ErrNoRoute, err)
		}

		if directive.Terminal {
			if err := e.checkpoint(ctx, sessionID, directive.Outcome, state); err != nil {
				return zero, err
			}
			e.emit(emit.Event{
				SessionID: sessionID,
				Step:      step,
				Msg:       "session terminated",
				Meta:      map[string]interface{}{"outcome": directive.Outcome},
			})
			e.cfg.metrics.outcome(directive.Outcome)
			return Result[S]{State: state, Status: directive.Outcome, Done: true, Outcome: directive.Outcome}, nil
		}

		e.mu.RLock()
		sp, isSuspend := e.suspends[directive.Step]
		w, isWorker := e.workers[directive.Step]
		e.mu.RUnlock()

		if isSuspend {
			// Checkpoint before suspending so a crash while suspended
			// loses nothing.
			if err := e.checkpoint(ctx, sessionID, directive.Step, state); err != nil {
				return zero, err
			}
			prompt := sp.Prompt(state)
			e.emit(emit.Event{
				SessionID: sessionID,
				Step:      step,
				Stage:     directive.Step,
				Msg:       "suspended",
				Meta:      map[string]interface{}{"prompt": prompt},
			})
			e.cfg.metrics.suspended()
			return Result[S]{
				State:      state,
				Status:     directive.Step,
				Suspension: &Suspension{SessionID: sessionID, Prompt: prompt},
			}, nil
		}

		if !isWorker {
			return zero, &EngineError{Message: "no stage registered: " + directive.Step, Code: "UNKNOWN_STAGE"}
		}

		started := time.Now()
		delta, err := w.Run(ctx, state)
		e.cfg.metrics.observeStep(directive.Step, time.Since(started).Seconds())

		if err != nil {
			// No partial update is applied; the last checkpoint stands.
			e.emit(emit.Event{
				SessionID: sessionID,
				Step:      step,
				Stage:     directive.Step,
				Msg:       "stage failed",
				Meta:      map[string]interface{}{"error": err.Error()},
			})
			e.cfg.metrics.stepFailed(directive.Step)
			return zero, &StepError{Step: directive.Step, Err: err}
		}

		state = e.reducer(state, delta)
		if err := e.checkpoint(ctx, sessionID, directive.Step, state); err != nil {
			return zero, err
		}

		e.emit(emit.Event{
			SessionID: sessionID,
			Step:      step,
			Stage:     directive.Step,
			Msg:       "stage completed",
			Meta:      map[string]interface{}{"duration_ms": time.Since(started).Milliseconds()},
		})
	}
}

// checkpoint persists the full session record. The engine never proceeds
// past a step whose checkpoint write failed: an un-persisted suspension
// could not be resumed.
func (e *Engine[S]) checkpoint(ctx context.Context, sessionID, status string, state S) error {
	snapshot, err := clone(state)
	if err != nil {
		return &EngineError{Message: "failed to snapshot state", Code: "SNAPSHOT_ERROR", Cause: err}
	}

	cp := store.Checkpoint[S]{
		SessionID: sessionID,
		Status:    status,
		State:     snapshot,
		UpdatedAt: time.Now().UTC(),
	}
	if err := e.store.Save(ctx, cp); err != nil {
		return &EngineError{Message: "failed to save checkpoint", Code: "STORE_ERROR", Cause: err}
	}
	return nil
}

func (e *Engine[S]) validate() error {
	if e.router == nil {
		return &EngineError{Message: "router is required", Code: "MISSING_ROUTER"}
	}
	if e.reducer == nil {
		return &EngineError{Message: "reducer is required", Code: "MISSING_REDUCER"}
	}
	if e.store == nil {
		return &EngineError{Message: "store is required", Code: "MISSING_STORE"}
	}
	return nil
}

func (e *Engine[S]) emit(event emit.Event) {
	if e.emitter != nil {
		e.emitter.Emit(event)
	}
}
