// Package answer turns raw result rows into a human-readable reply.
//
// The formatter is the final communication layer: it hands the user's
// question and a bounded sample of the result set to an llm.Completer and
// returns the model's explanation. It never generates queries and never
// mentions internal systems; when the model is unreachable it degrades to a
// canned apology instead of failing the request.
package answer

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/hupe1980/kustopilot/core"
	"github.com/hupe1980/kustopilot/llm"
	"github.com/hupe1980/kustopilot/logging"
)

// Fallback is returned when the formatting model is unavailable.
const Fallback = "Sorry, I'm unable to generate a response right now. Please try again in a moment."

const systemPrompt = `You are the "Insight Translator", the final communication layer for a data
assistant. Combine the user's question with the provided data and answer in
clear, natural language.

Rules:
- NEVER mention internal technical terms: "KQL", "ADX", "schema", "trace_id",
  "tables" or "pipelines". NEVER expose generated queries or code.
- NEVER invent data. If the answer is not in the provided sample, say you
  don't know.
- If the user asked to list/show/display items, format ALL provided rows as a
  markdown table. Convert raw ISO timestamps to readable dates. Hide
  technical ID columns unless IDs were requested.
- If the user asked for an analysis, give a summary with key insights instead
  of a full table.
- Be professional and concise. Start directly with the answer.`

// Options configure the formatter.
type Options struct {
	// MaxRows bounds the sample handed to the model (default 100).
	MaxRows int
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Formatter explains result rows via an llm.Completer.
type Formatter struct {
	completer llm.Completer
	maxRows   int
	logger    logging.Logger
}

// New creates a formatter, applying option overrides.
func New(completer llm.Completer, optFns ...func(o *Options)) *Formatter {
	opts := Options{
		MaxRows: 100,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Formatter{
		completer: completer,
		maxRows:   opts.MaxRows,
		logger:    logging.OrNoOp(opts.Logger),
	}
}

// Format renders an answer for the question from the given rows. It always
// returns usable text; model failures degrade to Fallback.
func (f *Formatter) Format(ctx context.Context, question string, rows []core.Row) string {
	sample := rows
	note := "Full data shown"
	if len(rows) > f.maxRows {
		sample = rows[:f.maxRows]
		note = "Data truncated for performance"
	}

	payload, err := json.MarshalIndent(map[string]any{
		"total_rows_found": len(rows),
		"rows_shown_to_ai": len(sample),
		"data_sample":      sample,
		"note":             note,
	}, "", "  ")
	if err != nil {
		f.logger.Error("encode result sample", "error", err)
		return Fallback
	}

	user := "User Question:\n" + question + "\n\nSystem Result (JSON):\n" + string(payload) +
		"\n\nGenerate the best possible answer for the user."

	reply, err := f.completer.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: user},
	})
	if err != nil || strings.TrimSpace(reply) == "" {
		f.logger.Error("formatter completion failed", "error", err)
		return Fallback
	}
	return strings.TrimSpace(reply)
}
