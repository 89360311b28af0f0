package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stockintel/stockintel/workflow/store"
)

// testState is a minimal three-stage pipeline state: gather, analyze,
// then a human decision.
type testState struct {
	Research string   `json:"research"`
	Analysis string   `json:"analysis"`
	Decision string   `json:"decision"`
	Log      []string `json:"log"`
}

func testReducer(prev, delta testState) testState {
	out := prev
	if out.Research == "" {
		out.Research = delta.Research
	}
	if out.Analysis == "" {
		out.Analysis = delta.Analysis
	}
	if out.Decision == "" {
		out.Decision = delta.Decision
	}
	out.Log = append(out.Log, delta.Log...)
	return out
}

func testRouter(state testState) (Directive, error) {
	switch {
	case state.Research == "":
		return Goto("research"), nil
	case state.Analysis == "":
		return Goto("analyze"), nil
	case state.Decision == "":
		return Goto("review"), nil
	case state.Decision == "approve":
		return Terminate("approved"), nil
	case state.Decision == "reject":
		return Terminate("rejected"), nil
	default:
		return Directive{}, fmt.Errorf("unroutable state")
	}
}

type testReview struct{}

func (testReview) Prompt(state testState) string {
	return "Approve " + state.Analysis + "?"
}

func (testReview) Apply(state testState, input string) (testState, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "approve", "reject":
		return testState{Decision: strings.ToLower(strings.TrimSpace(input))}, nil
	default:
		return testState{}, &InputError{Message: "Please answer approve or reject."}
	}
}

// newTestEngine wires the three-stage pipeline onto the given store.
func newTestEngine(t *testing.T, st store.Store[testState]) *Engine[testState] {
	t.Helper()

	eng := New[testState](testRouter, testReducer, st, nil)
	if err := eng.Register("research", WorkerFunc[testState](func(ctx context.Context, s testState) (testState, error) {
		return testState{Research: "data", Log: []string{"researched"}}, nil
	})); err != nil {
		t.Fatalf("Register(research) error: %v", err)
	}
	if err := eng.Register("analyze", WorkerFunc[testState](func(ctx context.Context, s testState) (testState, error) {
		return testState{Analysis: "BUY", Log: []string{"analyzed"}}, nil
	})); err != nil {
		t.Fatalf("Register(analyze) error: %v", err)
	}
	if err := eng.RegisterSuspend("review", testReview{}); err != nil {
		t.Fatalf("RegisterSuspend(review) error: %v", err)
	}
	return eng
}

func TestEngineLifecycle(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore[testState]()
	eng := newTestEngine(t, st)

	res, err := eng.Start(ctx, "s1", testState{})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if res.Done {
		t.Fatal("expected suspension, got terminal result")
	}
	if res.Suspension == nil {
		t.Fatal("expected non-nil Suspension")
	}
	if res.Suspension.Prompt != "Approve BUY?" {
		t.Errorf("prompt = %q, want %q", res.Suspension.Prompt, "Approve BUY?")
	}
	if res.Status != "review" {
		t.Errorf("status = %q, want review", res.Status)
	}
	if res.State.Research != "data" || res.State.Analysis != "BUY" {
		t.Errorf("unexpected state before suspension: %+v", res.State)
	}

	// The suspension checkpoint must already be durable.
	cp, err := st.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cp.Status != "review" {
		t.Errorf("checkpoint status = %q, want review", cp.Status)
	}

	res, err = eng.Resume(ctx, "s1", "approve")
	if err != nil {
		t.Fatalf("Resume error: %v", err)
	}
	if !res.Done {
		t.Fatal("expected terminal result after resume")
	}
	if res.Outcome != "approved" {
		t.Errorf("outcome = %q, want approved", res.Outcome)
	}
	if res.State.Decision != "approve" {
		t.Errorf("decision = %q, want approve", res.State.Decision)
	}

	cp, err = st.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cp.Status != "approved" {
		t.Errorf("terminal checkpoint status = %q, want approved", cp.Status)
	}
}

func TestEngineInvalidInputResuspends(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore[testState]()
	eng := newTestEngine(t, st)

	if _, err := eng.Start(ctx, "s1", testState{}); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	before, err := st.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	res, err := eng.Resume(ctx, "s1", "maybe")
	if err != nil {
		t.Fatalf("Resume with invalid input should not error, got: %v", err)
	}
	if res.Done {
		t.Fatal("invalid input must not terminate the session")
	}
	if res.Suspension == nil {
		t.Fatal("expected re-suspension")
	}
	if !strings.Contains(res.Suspension.Prompt, "approve or reject") {
		t.Errorf("corrective prompt missing guidance: %q", res.Suspension.Prompt)
	}
	if !strings.Contains(res.Suspension.Prompt, "Approve BUY?") {
		t.Errorf("corrective prompt should restate the question: %q", res.Suspension.Prompt)
	}

	// Rejected input must not advance state or rewrite the checkpoint.
	after, err := st.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if after.Status != before.Status || after.State.Decision != "" {
		t.Errorf("state advanced on invalid input: %+v", after)
	}

	// A valid retry still works.
	res, err = eng.Resume(ctx, "s1", "reject")
	if err != nil {
		t.Fatalf("Resume error: %v", err)
	}
	if !res.Done || res.Outcome != "rejected" {
		t.Errorf("got (done=%v, outcome=%q), want (true, rejected)", res.Done, res.Outcome)
	}
}

func TestEngineResumeErrors(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore[testState]()
	eng := newTestEngine(t, st)

	t.Run("unknown session", func(t *testing.T) {
		_, err := eng.Resume(ctx, "nope", "approve")
		if !errors.Is(err, ErrUnknownSession) {
			t.Errorf("want ErrUnknownSession, got %v", err)
		}
	})

	t.Run("terminated session", func(t *testing.T) {
		if _, err := eng.Start(ctx, "s1", testState{}); err != nil {
			t.Fatalf("Start error: %v", err)
		}
		if _, err := eng.Resume(ctx, "s1", "approve"); err != nil {
			t.Fatalf("Resume error: %v", err)
		}
		_, err := eng.Resume(ctx, "s1", "approve")
		if !errors.Is(err, ErrNotSuspended) {
			t.Errorf("want ErrNotSuspended on double resume, got %v", err)
		}
	})
}

func TestEngineWorkerFailurePreservesCheckpoint(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore[testState]()

	calls := 0
	eng := New[testState](testRouter, testReducer, st, nil)
	if err := eng.Register("research", WorkerFunc[testState](func(ctx context.Context, s testState) (testState, error) {
		return testState{Research: "data"}, nil
	})); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := eng.Register("analyze", WorkerFunc[testState](func(ctx context.Context, s testState) (testState, error) {
		calls++
		if calls == 1 {
			return testState{}, errors.New("model unavailable")
		}
		return testState{Analysis: "HOLD"}, nil
	})); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := eng.RegisterSuspend("review", testReview{}); err != nil {
		t.Fatalf("RegisterSuspend error: %v", err)
	}

	_, err := eng.Start(ctx, "s1", testState{})
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("want *StepError, got %v", err)
	}
	if stepErr.Step != "analyze" {
		t.Errorf("failing step = %q, want analyze", stepErr.Step)
	}

	// The pre-step checkpoint must survive: research done, no analysis.
	cp, err := st.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cp.Status != "research" || cp.State.Research != "data" || cp.State.Analysis != "" {
		t.Errorf("checkpoint corrupted by failed step: %+v", cp)
	}

	// Re-driving from the checkpoint retries the same stage.
	res, err := eng.Start(ctx, "s1", cp.State)
	if err != nil {
		t.Fatalf("restart error: %v", err)
	}
	if res.Suspension == nil || res.State.Analysis != "HOLD" {
		t.Errorf("retry did not complete the failed stage: %+v", res)
	}
}

func TestEngineRouterNonMatchIsFatal(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore[testState]()
	eng := newTestEngine(t, st)

	// A decision outside the closed vocabulary has no routing row.
	_, err := eng.Start(ctx, "s1", testState{
		Research: "data",
		Analysis: "BUY",
		Decision: "corrupted",
	})
	if !errors.Is(err, ErrNoRoute) {
		t.Errorf("want ErrNoRoute, got %v", err)
	}
}

func TestEngineUnknownStage(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore[testState]()

	eng := New[testState](testRouter, testReducer, st, nil)
	// Only research is registered; the router will ask for analyze.
	if err := eng.Register("research", WorkerFunc[testState](func(ctx context.Context, s testState) (testState, error) {
		return testState{Research: "data"}, nil
	})); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err := eng.Start(ctx, "s1", testState{})
	var engErr *EngineError
	if !errors.As(err, &engErr) || engErr.Code != "UNKNOWN_STAGE" {
		t.Errorf("want EngineError UNKNOWN_STAGE, got %v", err)
	}
}

func TestEngineRegistrationErrors(t *testing.T) {
	st := store.NewMemStore[testState]()
	eng := New[testState](testRouter, testReducer, st, nil)

	noop := WorkerFunc[testState](func(ctx context.Context, s testState) (testState, error) {
		return testState{}, nil
	})

	if err := eng.Register("", noop); err == nil {
		t.Error("expected error for empty stage name")
	}
	if err := eng.Register("research", nil); err == nil {
		t.Error("expected error for nil worker")
	}
	if err := eng.Register("research", noop); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := eng.Register("research", noop); err == nil {
		t.Error("expected error for duplicate worker stage")
	}
	if err := eng.RegisterSuspend("research", testReview{}); err == nil {
		t.Error("expected error registering suspend over existing worker stage")
	}
}

// failingStore accepts writes until a trip point, then fails every Save.
type failingStore struct {
	inner  *store.MemStore[testState]
	failAt int
	saves  int
}

func (f *failingStore) Save(ctx context.Context, cp store.Checkpoint[testState]) error {
	f.saves++
	if f.saves >= f.failAt {
		return errors.New("disk full")
	}
	return f.inner.Save(ctx, cp)
}

func (f *failingStore) Load(ctx context.Context, sessionID string) (store.Checkpoint[testState], error) {
	return f.inner.Load(ctx, sessionID)
}

func TestEngineCheckpointWriteFailureHalts(t *testing.T) {
	ctx := context.Background()
	// Initial save succeeds; the post-research save fails.
	fs := &failingStore{inner: store.NewMemStore[testState](), failAt: 2}
	eng := newTestEngine(t, fs)

	_, err := eng.Start(ctx, "s1", testState{})
	var engErr *EngineError
	if !errors.As(err, &engErr) || engErr.Code != "STORE_ERROR" {
		t.Fatalf("want EngineError STORE_ERROR, got %v", err)
	}

	// The last durable record is the initial checkpoint.
	cp, err := fs.inner.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cp.Status != "start" || cp.State.Research != "" {
		t.Errorf("unexpected surviving checkpoint: %+v", cp)
	}
}

// TestEngineResumeAcrossInstances simulates a process restart: the first
// engine instance is discarded after suspension and a fresh one resumes the
// session from the shared store alone.
func TestEngineResumeAcrossInstances(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore[testState]()

	first := newTestEngine(t, st)
	res, err := first.Start(ctx, "s1", testState{})
	if err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if res.Suspension == nil {
		t.Fatal("expected suspension")
	}

	second := newTestEngine(t, st)
	res, err = second.Resume(ctx, "s1", "approve")
	if err != nil {
		t.Fatalf("Resume on fresh instance error: %v", err)
	}
	if !res.Done || res.Outcome != "approved" {
		t.Errorf("got (done=%v, outcome=%q), want (true, approved)", res.Done, res.Outcome)
	}
	if res.State.Research != "data" || res.State.Analysis != "BUY" {
		t.Errorf("restored state incomplete: %+v", res.State)
	}
}

func TestEngineMaxSteps(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore[testState]()

	// A router that always routes to the same stage never terminates.
	spin := func(state testState) (Directive, error) {
		return Goto("loop"), nil
	}
	eng := New[testState](spin, testReducer, st, nil, WithMaxSteps(5))
	if err := eng.Register("loop", WorkerFunc[testState](func(ctx context.Context, s testState) (testState, error) {
		return testState{}, nil
	})); err != nil {
		t.Fatalf("Register error: %v", err)
	}

	_, err := eng.Start(ctx, "s1", testState{})
	var engErr *EngineError
	if !errors.As(err, &engErr) || engErr.Code != "MAX_STEPS_EXCEEDED" {
		t.Errorf("want EngineError MAX_STEPS_EXCEEDED, got %v", err)
	}
}

func TestEngineContextCancellation(t *testing.T) {
	st := store.NewMemStore[testState]()
	eng := newTestEngine(t, st)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Start(ctx, "s1", testState{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("want context.Canceled, got %v", err)
	}
}

func TestEngineMetrics(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemStore[testState]()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	eng := New[testState](testRouter, testReducer, st, nil, WithMetrics(m))
	if err := eng.Register("research", WorkerFunc[testState](func(ctx context.Context, s testState) (testState, error) {
		return testState{Research: "data"}, nil
	})); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := eng.Register("analyze", WorkerFunc[testState](func(ctx context.Context, s testState) (testState, error) {
		return testState{Analysis: "SELL"}, nil
	})); err != nil {
		t.Fatalf("Register error: %v", err)
	}
	if err := eng.RegisterSuspend("review", testReview{}); err != nil {
		t.Fatalf("RegisterSuspend error: %v", err)
	}

	if _, err := eng.Start(ctx, "s1", testState{}); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if _, err := eng.Resume(ctx, "s1", "approve"); err != nil {
		t.Fatalf("Resume error: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	found := map[string]bool{}
	for _, fam := range families {
		found[fam.GetName()] = true
	}
	for _, name := range []string{
		"stockintel_sessions_started_total",
		"stockintel_sessions_resumed_total",
		"stockintel_suspensions_total",
		"stockintel_outcomes_total",
		"stockintel_step_duration_seconds",
	} {
		if !found[name] {
			t.Errorf("metric %s not collected", name)
		}
	}
}
