package intel

import (
	"context"
	"errors"
	"fmt"

	"github.com/stockintel/stockintel/market"
	"github.com/stockintel/stockintel/model"
)

const analystSystemPrompt = `You are an expert financial analyst. Analyze the provided stock research data and provide:

1. Investment Recommendation: BUY, HOLD, or SELL
2. Confidence Level: High, Medium, or Low
3. Key Rationale: 3-5 bullet points explaining your recommendation
4. Risk Factors: 2-3 potential concerns
5. Price Target: 6-month price estimate

Be objective, data-driven, and clearly explain your reasoning. Format your response clearly.`

const comparisonSystemPrompt = `You are an expert financial analyst specializing in comparative stock analysis. Analyze the two stocks and provide:

1. Winner Pick: Which stock is the better investment right now and why (one clear choice)
2. Head-to-Head Analysis: Compare valuation, growth prospects, financial health, and risk profile
3. Key Differentiators: 3-4 factors that most distinguish these two investments
4. Risk Factors for Each: 2-3 specific concerns for each stock
5. Investment Scenarios: When would you prefer one over the other?

Be objective, data-driven, and clearly explain your reasoning. Make a definitive recommendation.`

// Analyst is the synthesis stage. It renders the research into a prompt and
// asks the chat model for a structured investment recommendation.
type Analyst struct {
	chat model.ChatModel
}

// NewAnalyst creates the synthesis worker.
func NewAnalyst(chat model.ChatModel) (*Analyst, error) {
	if chat == nil {
		return nil, errors.New("chat model is required")
	}
	return &Analyst{chat: chat}, nil
}

// Run implements workflow.Worker.
func (a *Analyst) Run(ctx context.Context, state SessionState) (SessionState, error) {
	if !state.researchComplete() {
		return SessionState{}, errors.New("no research available to analyze")
	}

	var system, summary string
	if state.Mode == ModeComparison {
		system = comparisonSystemPrompt
		summary = market.FormatComparison(*state.Research, *state.ResearchB)
	} else {
		system = analystSystemPrompt
		summary = market.FormatReport(*state.Research)
	}

	user := fmt.Sprintf(
		"Analyze this stock research and provide your investment recommendation:\n\n%s\n\nProvide a comprehensive investment analysis following the structured format.",
		summary,
	)

	out, err := a.chat.Chat(ctx, []model.Message{
		model.System(system),
		model.User(user),
	})
	if err != nil {
		return SessionState{}, fmt.Errorf("synthesis: %w", err)
	}
	if out.Text == "" {
		return SessionState{}, errors.New("synthesis: empty model response")
	}

	return SessionState{
		Analysis: out.Text,
		Messages: []Message{agentMessage("analyst", fmt.Sprintf(
			"Investment Analysis for %s:\n\n%s", state.subjectLabel(), out.Text,
		))},
	}, nil
}
