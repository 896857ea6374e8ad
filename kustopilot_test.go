package kustopilot

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kustopilot/core"
	"github.com/hupe1980/kustopilot/pipeline"
)

type staticGenerator struct {
	query string
}

func (g staticGenerator) Generate(context.Context, string, int, *core.RepairContext) (string, error) {
	return g.query, nil
}

type staticExecutor struct {
	rows    []core.Row
	queries []string
	closed  bool
}

func (e *staticExecutor) Execute(_ context.Context, query string) ([]core.Row, error) {
	e.queries = append(e.queries, query)
	return e.rows, nil
}

func (e *staticExecutor) Close() error {
	e.closed = true
	return nil
}

func TestCopilotAsk(t *testing.T) {
	exec := &staticExecutor{rows: []core.Row{{"operation": "login"}}}
	c, err := New(staticGenerator{query: `API_gateway | where statusCode =~ "500"`}, exec)
	require.NoError(t, err)

	res, err := c.Ask(context.Background(), "show failed requests")
	require.NoError(t, err)

	assert.Equal(t, pipeline.StatusSuccess, res.Status)
	assert.Len(t, res.Rows, 1)
	// The default guardrail policy is wired in, row cap included.
	require.Len(t, exec.queries, 1)
	assert.True(t, strings.HasSuffix(exec.queries[0], "\n| take 50"))
}

func TestCopilotDefaultGuardrailsBlock(t *testing.T) {
	exec := &staticExecutor{}
	c, err := New(staticGenerator{query: ".drop table API_gateway"}, exec)
	require.NoError(t, err)

	res, err := c.Ask(context.Background(), "drop everything")
	require.NoError(t, err)

	assert.Equal(t, pipeline.StatusRepairExhausted, res.Status)
	assert.Empty(t, exec.queries)
}

func TestCopilotClose(t *testing.T) {
	exec := &staticExecutor{}
	c, err := New(staticGenerator{query: "API_gateway | take 1"}, exec)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.True(t, exec.closed)
}
