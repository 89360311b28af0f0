package intel

import (
	"fmt"

	"github.com/stockintel/stockintel/workflow"
)

// Route is the workflow's decision table, evaluated in order with first
// match winning:
//
//	research incomplete            -> data_gathering
//	analysis absent                -> synthesis
//	decision absent                -> human_review
//	decision approved              -> terminate (approved)
//	decision rejected              -> terminate (rejected)
//
// The ordering enforces the stage preconditions: synthesis is unreachable
// without research, human review without analysis. A state matching no row
// carries a decision outside the closed vocabulary and is unroutable.
func Route(state SessionState) (workflow.Directive, error) {
	switch {
	case !state.researchComplete():
		return workflow.Goto(StageDataGathering), nil
	case state.Analysis == "":
		return workflow.Goto(StageSynthesis), nil
	case state.Decision == "":
		return workflow.Goto(StageHumanReview), nil
	case state.Decision == DecisionApproved:
		return workflow.Terminate(string(DecisionApproved)), nil
	case state.Decision == DecisionRejected:
		return workflow.Terminate(string(DecisionRejected)), nil
	default:
		return workflow.Directive{}, fmt.Errorf("no routing row for decision %q", state.Decision)
	}
}
