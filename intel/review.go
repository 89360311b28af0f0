package intel

import (
	"fmt"
	"strings"

	"github.com/stockintel/stockintel/workflow"
)

// Review is the human-review suspend point. It presents the analysis for
// approval and, on resume, validates the supplied input against the closed
// decision vocabulary. Invalid input re-suspends with a corrective prompt
// and no state advance.
type Review struct{}

// NewReview creates the human-review suspend point.
func NewReview() *Review {
	return &Review{}
}

// Prompt implements workflow.SuspendPoint.
func (Review) Prompt(state SessionState) string {
	return fmt.Sprintf("Approve recommendation for %s?", state.subjectLabel())
}

// Apply implements workflow.SuspendPoint. The accepted inputs are
// approve/approved and reject/rejected, case-insensitive.
func (Review) Apply(state SessionState, input string) (SessionState, error) {
	decision, err := ParseDecision(input)
	if err != nil {
		return SessionState{}, invalidDecision(input)
	}

	ack := "The investment recommendation has been approved."
	if decision == DecisionRejected {
		ack = "The investment recommendation has been rejected."
	}

	return SessionState{
		Decision: decision,
		Messages: []Message{
			userMessage(input),
			sysMessage(ack),
		},
	}, nil
}

func invalidDecision(input string) *workflow.InputError {
	return &workflow.InputError{
		Message: fmt.Sprintf("%q is not a valid decision. Answer 'approved' or 'rejected'.",
			strings.TrimSpace(input)),
	}
}
