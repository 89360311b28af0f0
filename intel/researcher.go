package intel

import (
	"context"
	"errors"
	"fmt"

	"github.com/stockintel/stockintel/market"
)

// Researcher is the data-gathering stage. It fetches a research report for
// the session's subject (two reports in comparison mode) and records a
// summary in the message log. Fetch failures propagate as worker errors; the
// session stays at its pre-step checkpoint so the fetch can be retried.
type Researcher struct {
	provider market.Provider
}

// NewResearcher creates the data-gathering worker.
func NewResearcher(provider market.Provider) (*Researcher, error) {
	if provider == nil {
		return nil, errors.New("market provider is required")
	}
	return &Researcher{provider: provider}, nil
}

// Run implements workflow.Worker.
func (r *Researcher) Run(ctx context.Context, state SessionState) (SessionState, error) {
	if state.Mode == ModeComparison {
		return r.runComparison(ctx, state)
	}
	return r.runSingle(ctx, state)
}

func (r *Researcher) runSingle(ctx context.Context, state SessionState) (SessionState, error) {
	if state.Subject == "" {
		return SessionState{}, errors.New("no subject to research")
	}

	report, err := r.provider.Fetch(ctx, state.Subject)
	if err != nil {
		return SessionState{}, fmt.Errorf("fetch %s: %w", state.Subject, err)
	}

	return SessionState{
		Research: &report,
		Messages: []Message{agentMessage("researcher", fmt.Sprintf(
			"Research complete for %s. Key data collected:\n%s",
			report.Ticker, market.FormatReport(report),
		))},
	}, nil
}

func (r *Researcher) runComparison(ctx context.Context, state SessionState) (SessionState, error) {
	if state.Subject == "" || state.SubjectB == "" {
		return SessionState{}, errors.New("comparison requires two subjects")
	}

	reportA, err := r.provider.Fetch(ctx, state.Subject)
	if err != nil {
		return SessionState{}, fmt.Errorf("fetch %s: %w", state.Subject, err)
	}
	reportB, err := r.provider.Fetch(ctx, state.SubjectB)
	if err != nil {
		return SessionState{}, fmt.Errorf("fetch %s: %w", state.SubjectB, err)
	}

	return SessionState{
		Research:  &reportA,
		ResearchB: &reportB,
		Messages: []Message{agentMessage("researcher", fmt.Sprintf(
			"Research complete for %s vs %s. Comparison data collected:\n%s",
			reportA.Ticker, reportB.Ticker, market.FormatComparison(reportA, reportB),
		))},
	}, nil
}
