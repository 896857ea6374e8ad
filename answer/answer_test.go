package answer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kustopilot/core"
	"github.com/hupe1980/kustopilot/llm"
)

type fakeCompleter struct {
	response string
	err      error
	prompts  [][]llm.Message
}

func (f *fakeCompleter) Complete(_ context.Context, messages []llm.Message) (string, error) {
	f.prompts = append(f.prompts, messages)
	return f.response, f.err
}

func TestFormatReturnsModelAnswer(t *testing.T) {
	fc := &fakeCompleter{response: "  There were 3 failed logins today.  "}
	f := New(fc)

	got := f.Format(context.Background(), "how many failed logins?", []core.Row{{"hits": int64(3)}})
	assert.Equal(t, "There were 3 failed logins today.", got)

	require.Len(t, fc.prompts, 1)
	user := fc.prompts[0][1].Content
	assert.Contains(t, user, "how many failed logins?")
	assert.Contains(t, user, `"total_rows_found": 1`)
}

func TestFormatTruncatesLargeResultSets(t *testing.T) {
	fc := &fakeCompleter{response: "ok"}
	f := New(fc, func(o *Options) { o.MaxRows = 2 })

	rows := []core.Row{{"n": 1}, {"n": 2}, {"n": 3}}
	_ = f.Format(context.Background(), "list them", rows)

	require.Len(t, fc.prompts, 1)
	user := fc.prompts[0][1].Content
	assert.Contains(t, user, `"total_rows_found": 3`)
	assert.Contains(t, user, `"rows_shown_to_ai": 2`)
	assert.Contains(t, user, "Data truncated for performance")
}

func TestFormatFallsBackOnModelError(t *testing.T) {
	f := New(&fakeCompleter{err: errors.New("model overloaded")})

	got := f.Format(context.Background(), "anything", []core.Row{{"n": 1}})
	assert.Equal(t, Fallback, got)
}

func TestFormatFallsBackOnEmptyAnswer(t *testing.T) {
	f := New(&fakeCompleter{response: "   "})

	got := f.Format(context.Background(), "anything", []core.Row{{"n": 1}})
	assert.Equal(t, Fallback, got)
}
