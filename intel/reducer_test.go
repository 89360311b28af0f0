package intel

import "testing"

func TestReduceAppendsMessages(t *testing.T) {
	prev := SessionState{
		Subject:  "AAPL",
		Messages: []Message{userMessage("Analyze stock AAPL")},
	}
	delta := SessionState{
		Messages: []Message{agentMessage("researcher", "Research complete")},
	}

	out := Reduce(prev, delta)
	if len(out.Messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(out.Messages))
	}
	if out.Messages[0].Content != "Analyze stock AAPL" {
		t.Errorf("existing messages reordered: %+v", out.Messages)
	}
	if out.Messages[1].Agent != "researcher" {
		t.Errorf("appended message wrong: %+v", out.Messages[1])
	}
}

func TestReduceSetOnceFields(t *testing.T) {
	prev := SessionState{
		Mode:     ModeSingle,
		Subject:  "AAPL",
		Research: reportPtr("AAPL"),
		Analysis: "HOLD",
	}
	delta := SessionState{
		Mode:     ModeComparison,
		Subject:  "MSFT",
		Research: reportPtr("MSFT"),
		Analysis: "SELL",
		Decision: DecisionApproved,
	}

	out := Reduce(prev, delta)
	if out.Mode != ModeSingle || out.Subject != "AAPL" {
		t.Errorf("identity fields overwritten: mode=%q subject=%q", out.Mode, out.Subject)
	}
	if out.Research.Ticker != "AAPL" {
		t.Errorf("research overwritten: %q", out.Research.Ticker)
	}
	if out.Analysis != "HOLD" {
		t.Errorf("analysis overwritten: %q", out.Analysis)
	}
	if out.Decision != DecisionApproved {
		t.Errorf("absent decision not set: %q", out.Decision)
	}
}

func TestReduceFillsAbsentFields(t *testing.T) {
	prev := SessionState{Mode: ModeComparison, Subject: "AAPL", SubjectB: "MSFT"}

	out := Reduce(prev, SessionState{
		Research:  reportPtr("AAPL"),
		ResearchB: reportPtr("MSFT"),
	})
	if out.Research == nil || out.ResearchB == nil {
		t.Fatal("research fields not filled")
	}

	out = Reduce(out, SessionState{Analysis: "AAPL is the better pick"})
	if out.Analysis == "" {
		t.Error("analysis not filled")
	}
}
