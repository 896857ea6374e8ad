package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Completer = (*MockCompleter)(nil)

func TestMockCompleter(t *testing.T) {
	m := NewMockCompleter()
	m.AddResponse("show failed requests", "API_gateway | take 10")

	got, err := m.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "you are a query generator"},
		{Role: RoleUser, Content: "show failed requests"},
	})
	require.NoError(t, err)
	assert.Equal(t, "API_gateway | take 10", got)

	// Unregistered prompts get a deterministic default.
	got, err = m.Complete(context.Background(), []Message{{Role: RoleUser, Content: "something else"}})
	require.NoError(t, err)
	assert.Equal(t, "Mock response to: something else", got)

	_, err = m.Complete(context.Background(), nil)
	require.Error(t, err)
}
