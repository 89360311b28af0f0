// Package openai provides a model.ChatModel backed by the OpenAI chat
// completions API. Pointing the base URL at an OpenAI-compatible gateway
// such as OpenRouter works unchanged.
package openai

import (
	"context"
	"errors"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/stockintel/stockintel/model"
)

// OpenRouterBaseURL is the base URL for the OpenRouter gateway, which serves
// many hosted models behind the OpenAI wire format.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// Client is a chat completion client for OpenAI-compatible APIs.
// Safe for concurrent use.
type Client struct {
	client      *openai.Client
	model       string
	temperature float64
}

// Option configures a Client.
type Option func(*settings)

type settings struct {
	baseURL     string
	temperature float64
}

// WithBaseURL directs requests at an OpenAI-compatible endpoint, e.g.
// OpenRouterBaseURL.
func WithBaseURL(url string) Option {
	return func(s *settings) { s.baseURL = url }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(s *settings) { s.temperature = t }
}

// New creates a Client for the given API key and model identifier.
func New(apiKey, modelID string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("API key cannot be empty")
	}
	if modelID == "" {
		return nil, errors.New("model cannot be empty")
	}

	s := settings{temperature: 1.0}
	for _, opt := range opts {
		opt(&s)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if s.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(s.baseURL))
	}

	client := openai.NewClient(reqOpts...)
	return &Client{
		client:      &client,
		model:       modelID,
		temperature: s.temperature,
	}, nil
}

// Chat implements model.ChatModel.
func (c *Client) Chat(ctx context.Context, messages []model.Message) (model.ChatOut, error) {
	if err := ctx.Err(); err != nil {
		return model.ChatOut{}, err
	}

	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			params = append(params, openai.ChatCompletionMessageParamUnion{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			})
		case model.RoleAssistant:
			params = append(params, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Content: openai.ChatCompletionAssistantMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			})
		default:
			params = append(params, openai.ChatCompletionMessageParamUnion{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(msg.Content),
					},
				},
			})
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Messages:    params,
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return model.ChatOut{}, err
	}
	if len(completion.Choices) == 0 {
		return model.ChatOut{}, errors.New("no choices in completion response")
	}

	return model.ChatOut{
		Text:       completion.Choices[0].Message.Content,
		Model:      completion.Model,
		TokensUsed: int(completion.Usage.TotalTokens),
	}, nil
}
