// Package anthropic provides a model.ChatModel backed by the Anthropic
// Messages API.
package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/stockintel/stockintel/model"
)

const defaultMaxTokens = 4096

// Client is a chat completion client for Anthropic models.
// Safe for concurrent use.
type Client struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// New creates a Client for the given API key and model identifier.
func New(apiKey, modelID string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if modelID == "" {
		return nil, errors.New("model cannot be empty")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &Client{
		client:    &client,
		model:     modelID,
		maxTokens: defaultMaxTokens,
	}, nil
}

// Chat implements model.ChatModel. System-role messages are lifted into the
// Messages API system field; the rest map to user/assistant turns.
func (c *Client) Chat(ctx context.Context, messages []model.Message) (model.ChatOut, error) {
	if err := ctx.Err(); err != nil {
		return model.ChatOut{}, err
	}

	var system []string
	params := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			system = append(system, msg.Content)
		case model.RoleAssistant:
			params = append(params, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	req := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  params,
	}
	if len(system) > 0 {
		req.System = []anthropic.TextBlockParam{
			{Text: strings.Join(system, "\n\n")},
		}
	}

	message, err := c.client.Messages.New(ctx, req)
	if err != nil {
		return model.ChatOut{}, err
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return model.ChatOut{
		Text:       sb.String(),
		Model:      string(message.Model),
		TokensUsed: int(message.Usage.InputTokens + message.Usage.OutputTokens),
	}, nil
}
