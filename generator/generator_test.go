package generator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kustopilot/core"
	"github.com/hupe1980/kustopilot/llm"
)

var _ core.Generator = (*KQLGenerator)(nil)

// fakeCompleter returns a canned response and records every prompt.
type fakeCompleter struct {
	response string
	err      error
	prompts  [][]llm.Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.prompts = append(f.prompts, messages)
	return f.response, f.err
}

func TestGenerateSanitizesModelOutput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "clean query passes through",
			raw:  "API_gateway | take 10",
			want: "API_gateway | take 10",
		},
		{
			name: "markdown fences stripped",
			raw:  "```kql\nAPI_gateway | take 10\n```",
			want: "API_gateway | take 10",
		},
		{
			name: "preamble removed",
			raw:  "Here is your query:\nAPI_gateway | where operation has \"login\"",
			want: "API_gateway | where operation has \"login\"",
		},
		{
			name: "let binding kept",
			raw:  "Sure:\nlet cutoff = ago(1h);\nAPI_gateway | where messageReceivedTimeStamp > cutoff",
			want: "let cutoff = ago(1h);\nAPI_gateway | where messageReceivedTimeStamp > cutoff",
		},
		{
			name: "bare pipe chain gets the table prepended",
			raw:  "| where statusCode =~ \"500\"",
			want: "API_gateway\n| where statusCode =~ \"500\"",
		},
		{
			name: "refusal yields empty",
			raw:  "Cannot sort on responseBody: free text is not sortable",
			want: "",
		},
		{
			name: "plain chatter yields empty",
			raw:  "I'd be happy to help with that!",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(&fakeCompleter{response: tt.raw})

			got, err := g.Generate(context.Background(), "goal", 0, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateInitialPrompt(t *testing.T) {
	fc := &fakeCompleter{response: "API_gateway | take 10"}
	g := New(fc)

	_, err := g.Generate(context.Background(), "show some requests", 0, nil)
	require.NoError(t, err)

	require.Len(t, fc.prompts, 1)
	require.Len(t, fc.prompts[0], 2)
	assert.Equal(t, llm.RoleSystem, fc.prompts[0][0].Role)
	assert.Equal(t, DefaultSystemPrompt, fc.prompts[0][0].Content)
	assert.Equal(t, "show some requests", fc.prompts[0][1].Content)
}

func TestGenerateRepairPromptEmbedsFailure(t *testing.T) {
	fc := &fakeCompleter{response: "API_gateway | take 10"}
	g := New(fc)

	repair := &core.RepairContext{
		LastCandidate: "API_gateway | summarize count() by statuscode",
		LastError:     "'statuscode' could not be resolved",
	}
	_, err := g.Generate(context.Background(), "count by status", 1, repair)
	require.NoError(t, err)

	require.Len(t, fc.prompts, 1)
	user := fc.prompts[0][1].Content
	assert.Contains(t, user, "count by status")
	assert.Contains(t, user, repair.LastCandidate)
	assert.Contains(t, user, repair.LastError)
}

func TestGeneratePropagatesCompleterError(t *testing.T) {
	g := New(&fakeCompleter{err: errors.New("model overloaded")})

	_, err := g.Generate(context.Background(), "goal", 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestGenerateCustomTable(t *testing.T) {
	fc := &fakeCompleter{response: "| where level =~ \"error\""}
	g := New(fc, func(o *Options) { o.Table = "Logs" })

	got, err := g.Generate(context.Background(), "goal", 0, nil)
	require.NoError(t, err)
	assert.Equal(t, "Logs\n| where level =~ \"error\"", got)
}
