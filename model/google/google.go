// Package google provides a model.ChatModel backed by the Gemini API via
// the generative-ai-go client.
package google

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/stockintel/stockintel/model"
)

// Client is a chat completion client for Gemini models.
// Safe for concurrent use. Close releases the underlying connection.
type Client struct {
	client *genai.Client
	model  string
}

// New creates a Client for the given API key and model identifier.
func New(ctx context.Context, apiKey, modelID string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if modelID == "" {
		return nil, errors.New("model cannot be empty")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{client: client, model: modelID}, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Chat implements model.ChatModel. System messages become the model's
// system instruction; conversation turns are flattened into a single prompt
// since Gemini sessions are stateful server-side and each workflow stage is
// a one-shot call.
func (c *Client) Chat(ctx context.Context, messages []model.Message) (model.ChatOut, error) {
	gm := c.client.GenerativeModel(c.model)

	var system, prompt strings.Builder
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(msg.Content)
		default:
			if prompt.Len() > 0 {
				prompt.WriteString("\n\n")
			}
			prompt.WriteString(msg.Content)
		}
	}
	if system.Len() > 0 {
		gm.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system.String())},
		}
	}

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt.String()))
	if err != nil {
		return model.ChatOut{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return model.ChatOut{}, errors.New("no candidates in Gemini response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	out := model.ChatOut{Text: sb.String(), Model: c.model}
	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}
	return out, nil
}
