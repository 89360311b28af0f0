package model

import "context"

// Mock is a scripted ChatModel for tests. Each call returns the next reply
// in sequence; when the script is exhausted the last reply repeats. A nil
// Err takes precedence over replies when set.
type Mock struct {
	Replies []string
	Err     error

	calls int
}

// Chat implements ChatModel.
func (m *Mock) Chat(_ context.Context, _ []Message) (ChatOut, error) {
	if m.Err != nil {
		return ChatOut{}, m.Err
	}

	idx := m.calls
	if idx >= len(m.Replies) {
		idx = len(m.Replies) - 1
	}
	m.calls++

	if idx < 0 {
		return ChatOut{Model: "mock"}, nil
	}
	return ChatOut{Text: m.Replies[idx], Model: "mock"}, nil
}

// Calls reports how many times Chat was invoked.
func (m *Mock) Calls() int {
	return m.calls
}
