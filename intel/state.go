// Package intel implements the stock analysis workflow: a data-gathering
// stage, an LLM synthesis stage, and a human review suspend point, routed by
// a fixed decision table and driven by the workflow engine.
package intel

import (
	"fmt"
	"strings"
	"time"

	"github.com/stockintel/stockintel/market"
)

// Workflow stage names. Terminal statuses reuse the Decision values.
const (
	StatusStart        = "start"
	StageDataGathering = "data_gathering"
	StageSynthesis     = "synthesis"
	StageHumanReview   = "human_review"
)

// Mode selects between analyzing one instrument and comparing two.
type Mode string

const (
	ModeSingle     Mode = "single"
	ModeComparison Mode = "comparison"
)

// Decision is the enumerated outcome of human review.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// ParseDecision normalizes a raw human input into a Decision. The accepted
// vocabulary is closed: approve/approved and reject/rejected, case and
// whitespace insensitive. Anything else is an error; free-form feedback is
// not a decision.
func ParseDecision(input string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "approve", "approved":
		return DecisionApproved, nil
	case "reject", "rejected":
		return DecisionRejected, nil
	default:
		return "", fmt.Errorf("unrecognized decision %q", strings.TrimSpace(input))
	}
}

// Message is one entry in the session's append-only message log: worker
// outputs, system notices, and human inputs, in exchange order. The log is
// the audit trail and the prompt context for LLM-backed stages.
type Message struct {
	// Role is the conversational role: "user", "assistant" or "system".
	Role string `json:"role"`

	// Agent names the stage that produced the message, empty for
	// human and system entries.
	Agent string `json:"agent,omitempty"`

	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// SessionState is the accumulated state of one analysis session. Workers
// receive it read-only and return partial updates; Reduce merges them.
//
// The comparison fields (SubjectB, ResearchB) are only populated in
// ModeComparison; single-stock sessions leave them empty.
type SessionState struct {
	Mode     Mode   `json:"mode,omitempty"`
	Subject  string `json:"subject"`
	SubjectB string `json:"subject_b,omitempty"`

	Messages []Message `json:"message_log"`

	Research  *market.Report `json:"research_result,omitempty"`
	ResearchB *market.Report `json:"research_result_b,omitempty"`

	Analysis string   `json:"analysis_result,omitempty"`
	Decision Decision `json:"decision,omitempty"`
}

// researchComplete reports whether the data-gathering stage has produced
// everything the current mode requires.
func (s SessionState) researchComplete() bool {
	if s.Mode == ModeComparison {
		return s.Research != nil && s.ResearchB != nil
	}
	return s.Research != nil
}

// subjectLabel renders the instrument(s) under analysis for prompts and
// notices.
func (s SessionState) subjectLabel() string {
	if s.Mode == ModeComparison {
		return s.Subject + " vs " + s.SubjectB
	}
	return s.Subject
}

func sysMessage(content string) Message {
	return Message{Role: "system", Content: content, At: time.Now().UTC()}
}

func agentMessage(agent, content string) Message {
	return Message{Role: "assistant", Agent: agent, Content: content, At: time.Now().UTC()}
}

func userMessage(content string) Message {
	return Message{Role: "user", Content: content, At: time.Now().UTC()}
}
