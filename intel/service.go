package intel

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/stockintel/stockintel/market"
	"github.com/stockintel/stockintel/model"
	"github.com/stockintel/stockintel/workflow"
	"github.com/stockintel/stockintel/workflow/emit"
	"github.com/stockintel/stockintel/workflow/store"
)

// Service assembles the analysis workflow on top of the engine: the
// researcher, analyst and human-review stages wired to Route and Reduce,
// checkpointed through the given store.
type Service struct {
	engine *workflow.Engine[SessionState]
	store  store.Store[SessionState]
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	emitter emit.Emitter
	metrics *workflow.Metrics
}

// WithEmitter attaches an event emitter.
func WithEmitter(emitter emit.Emitter) ServiceOption {
	return func(cfg *serviceConfig) { cfg.emitter = emitter }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *workflow.Metrics) ServiceOption {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

// NewService wires the workflow. provider supplies research data, chat
// drives synthesis, and st persists checkpoints.
func NewService(provider market.Provider, chat model.ChatModel, st store.Store[SessionState], opts ...ServiceOption) (*Service, error) {
	if st == nil {
		return nil, errors.New("checkpoint store is required")
	}

	cfg := serviceConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	researcher, err := NewResearcher(provider)
	if err != nil {
		return nil, err
	}
	analyst, err := NewAnalyst(chat)
	if err != nil {
		return nil, err
	}

	engine := workflow.New[SessionState](Route, Reduce, st, cfg.emitter,
		workflow.WithInitialStatus(StatusStart),
		workflow.WithMaxSteps(16),
		workflow.WithMetrics(cfg.metrics),
	)
	if err := engine.Register(StageDataGathering, researcher); err != nil {
		return nil, err
	}
	if err := engine.Register(StageSynthesis, analyst); err != nil {
		return nil, err
	}
	if err := engine.RegisterSuspend(StageHumanReview, NewReview()); err != nil {
		return nil, err
	}

	return &Service{engine: engine, store: st}, nil
}

// Start begins a single-stock analysis session for the given subject and
// drives it until it terminates or suspends for review. Returns the
// generated session ID alongside the result.
func (s *Service) Start(ctx context.Context, subject string) (string, workflow.Result[SessionState], error) {
	subject = normalizeSubject(subject)
	if subject == "" {
		return "", workflow.Result[SessionState]{}, errors.New("subject cannot be empty")
	}

	sessionID := NewSessionID()
	initial := SessionState{
		Mode:     ModeSingle,
		Subject:  subject,
		Messages: []Message{userMessage("Analyze stock " + subject)},
	}

	result, err := s.engine.Start(ctx, sessionID, initial)
	return sessionID, result, err
}

// StartComparison begins a comparison session for two subjects.
func (s *Service) StartComparison(ctx context.Context, subjectA, subjectB string) (string, workflow.Result[SessionState], error) {
	subjectA = normalizeSubject(subjectA)
	subjectB = normalizeSubject(subjectB)
	if subjectA == "" || subjectB == "" {
		return "", workflow.Result[SessionState]{}, errors.New("comparison requires two subjects")
	}
	if subjectA == subjectB {
		return "", workflow.Result[SessionState]{}, fmt.Errorf("cannot compare %s with itself", subjectA)
	}

	sessionID := NewSessionID()
	initial := SessionState{
		Mode:     ModeComparison,
		Subject:  subjectA,
		SubjectB: subjectB,
		Messages: []Message{userMessage(fmt.Sprintf("Compare stocks %s and %s", subjectA, subjectB))},
	}

	result, err := s.engine.Start(ctx, sessionID, initial)
	return sessionID, result, err
}

// Resume continues a suspended session with a human decision. Works across
// process restarts: the session is rebuilt from the checkpoint store.
func (s *Service) Resume(ctx context.Context, sessionID, input string) (workflow.Result[SessionState], error) {
	return s.engine.Resume(ctx, sessionID, input)
}

// Inspect loads the current checkpoint for a session without driving it.
func (s *Service) Inspect(ctx context.Context, sessionID string) (store.Checkpoint[SessionState], error) {
	cp, err := s.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return store.Checkpoint[SessionState]{}, fmt.Errorf("%w: %s", workflow.ErrUnknownSession, sessionID)
		}
		return store.Checkpoint[SessionState]{}, err
	}
	return cp, nil
}

// NewSessionID generates a session identifier of the form session-1a2b3c4d.
func NewSessionID() string {
	return "session-" + uuid.New().String()[:8]
}

func normalizeSubject(subject string) string {
	return strings.ToUpper(strings.TrimSpace(subject))
}
