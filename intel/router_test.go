package intel

import (
	"testing"

	"github.com/stockintel/stockintel/market"
	"github.com/stockintel/stockintel/workflow"
)

func reportPtr(ticker string) *market.Report {
	r := market.SampleReport(ticker)
	return &r
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name        string
		state       SessionState
		wantStep    string
		wantOutcome string
	}{
		{
			name:     "fresh session routes to data gathering",
			state:    SessionState{Mode: ModeSingle, Subject: "AAPL"},
			wantStep: StageDataGathering,
		},
		{
			name: "research present routes to synthesis",
			state: SessionState{
				Mode: ModeSingle, Subject: "AAPL",
				Research: reportPtr("AAPL"),
			},
			wantStep: StageSynthesis,
		},
		{
			name: "analysis present routes to human review",
			state: SessionState{
				Mode: ModeSingle, Subject: "AAPL",
				Research: reportPtr("AAPL"),
				Analysis: "BUY",
			},
			wantStep: StageHumanReview,
		},
		{
			name: "approved decision terminates",
			state: SessionState{
				Mode: ModeSingle, Subject: "AAPL",
				Research: reportPtr("AAPL"),
				Analysis: "BUY",
				Decision: DecisionApproved,
			},
			wantOutcome: "approved",
		},
		{
			name: "rejected decision terminates",
			state: SessionState{
				Mode: ModeSingle, Subject: "AAPL",
				Research: reportPtr("AAPL"),
				Analysis: "BUY",
				Decision: DecisionRejected,
			},
			wantOutcome: "rejected",
		},
		{
			name: "comparison with one report still gathers data",
			state: SessionState{
				Mode: ModeComparison, Subject: "AAPL", SubjectB: "MSFT",
				Research: reportPtr("AAPL"),
			},
			wantStep: StageDataGathering,
		},
		{
			name: "comparison with both reports routes to synthesis",
			state: SessionState{
				Mode: ModeComparison, Subject: "AAPL", SubjectB: "MSFT",
				Research:  reportPtr("AAPL"),
				ResearchB: reportPtr("MSFT"),
			},
			wantStep: StageSynthesis,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			directive, err := Route(tt.state)
			if err != nil {
				t.Fatalf("Route error: %v", err)
			}
			if tt.wantOutcome != "" {
				if !directive.Terminal || directive.Outcome != tt.wantOutcome {
					t.Errorf("got %+v, want terminal %q", directive, tt.wantOutcome)
				}
				return
			}
			if directive.Terminal || directive.Step != tt.wantStep {
				t.Errorf("got %+v, want step %q", directive, tt.wantStep)
			}
		})
	}
}

// TestRouteOrder verifies first-match-wins: a decision cannot short-circuit
// the table when analysis is still missing.
func TestRouteOrder(t *testing.T) {
	state := SessionState{
		Mode: ModeSingle, Subject: "AAPL",
		Research: reportPtr("AAPL"),
		Decision: DecisionApproved, // analysis absent
	}
	directive, err := Route(state)
	if err != nil {
		t.Fatalf("Route error: %v", err)
	}
	if directive.Step != StageSynthesis {
		t.Errorf("got %+v, want synthesis before terminal rows", directive)
	}
}

func TestRouteUnroutableDecision(t *testing.T) {
	state := SessionState{
		Mode: ModeSingle, Subject: "AAPL",
		Research: reportPtr("AAPL"),
		Analysis: "BUY",
		Decision: Decision("maybe"),
	}
	if _, err := Route(state); err == nil {
		t.Error("expected error for decision outside closed vocabulary")
	}
}

// TestRouteAsEngineRouter checks the signature lines up with the engine's
// Router contract.
func TestRouteAsEngineRouter(t *testing.T) {
	var _ workflow.Router[SessionState] = Route
}
