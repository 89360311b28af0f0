// Package model defines the chat completion contract used by workflow
// stages that call a language model, plus shared message types. Concrete
// clients live in the subpackages openai, anthropic and google.
package model

import "context"

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatOut is the result of a chat completion call.
type ChatOut struct {
	// Text is the assistant's reply.
	Text string

	// Model is the concrete model identifier that served the request,
	// when the backend reports one.
	Model string

	// TokensUsed is the total token count (prompt plus completion), zero
	// if the backend does not report usage.
	TokensUsed int
}

// ChatModel is a synchronous chat completion backend. Implementations must
// be safe for concurrent use and must respect ctx cancellation.
type ChatModel interface {
	Chat(ctx context.Context, messages []Message) (ChatOut, error)
}

// System is shorthand for a system-role message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User is shorthand for a user-role message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}
