package workflow

// Directive is the router's verdict on what happens next: run a stage
// (which may be a worker or a suspend point) or terminate with an outcome.
type Directive struct {
	// Step is the stage to execute next. Empty when Terminal is set.
	Step string

	// Terminal indicates the session is complete; no further routing occurs.
	Terminal bool

	// Outcome labels the terminal result (e.g. "approved", "rejected").
	// Only meaningful when Terminal is set.
	Outcome string
}

// Goto returns a directive routing to the named stage.
func Goto(step string) Directive {
	return Directive{Step: step}
}

// Terminate returns a terminal directive with the given outcome.
func Terminate(outcome string) Directive {
	return Directive{Terminal: true, Outcome: outcome}
}

// Router decides, from accumulated state alone, which stage runs next.
//
// A router must be a pure function: deterministic, no side effects, and
// total over every reachable state. It is consulted fresh after every step,
// including after resume, so the router table is the sole authority on
// workflow order. Returning an error means no row matched; the engine treats
// that as a fatal invariant violation (ErrNoRoute), never as something to
// recover from by guessing a route.
type Router[S any] func(state S) (Directive, error)
