// Package llm defines the minimal chat-completion interface the generator and
// answer formatter drive, plus a deterministic mock for tests. Vendor
// adapters live in the openai and anthropic subpackages so downstream logic
// needs no per-provider branching.
package llm

import (
	"context"
	"fmt"
)

// Chat roles understood by every adapter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    string
	Content string
}

// Completer produces a single text completion for a conversation.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// MockCompleter is a lightweight in-memory Completer useful for tests and
// examples. Responses are keyed by the content of the last user message.
type MockCompleter struct {
	responses map[string]string
}

// NewMockCompleter constructs an empty MockCompleter.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{responses: make(map[string]string)}
}

// AddResponse registers a deterministic canned completion for an input prompt.
func (m *MockCompleter) AddResponse(prompt, response string) { m.responses[prompt] = response }

// Complete implements Completer.
func (m *MockCompleter) Complete(_ context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	var last string
	for _, msg := range messages {
		if msg.Role == RoleUser {
			last = msg.Content
		}
	}
	if resp, ok := m.responses[last]; ok {
		return resp, nil
	}
	return fmt.Sprintf("Mock response to: %s", last), nil
}
