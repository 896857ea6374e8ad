package generator

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hupe1980/kustopilot/core"
	"github.com/hupe1980/kustopilot/llm"
	"github.com/hupe1980/kustopilot/logging"
)

// Options configure the KQL generator.
type Options struct {
	// Table is the target table the sanitizer anchors on.
	Table string
	// SystemPrompt overrides the built-in schema prompt.
	SystemPrompt string
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// KQLGenerator implements core.Generator on top of an llm.Completer.
type KQLGenerator struct {
	completer    llm.Completer
	table        string
	systemPrompt string
	extractRe    *regexp.Regexp
	tableRe      *regexp.Regexp
	logger       logging.Logger
}

// New creates a generator for the default table, applying option overrides.
func New(completer llm.Completer, optFns ...func(o *Options)) *KQLGenerator {
	opts := Options{
		Table:        "API_gateway",
		SystemPrompt: DefaultSystemPrompt,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	quoted := regexp.QuoteMeta(opts.Table)
	return &KQLGenerator{
		completer:    completer,
		table:        opts.Table,
		systemPrompt: opts.SystemPrompt,
		// Accept an optional leading let-binding block before the table chain.
		extractRe: regexp.MustCompile(`(?is)((?:let\s+.+?;\s*)?` + quoted + `.*)`),
		tableRe:   regexp.MustCompile(`(?i)\b` + quoted + `\b`),
		logger:    logging.OrNoOp(opts.Logger),
	}
}

// Generate implements core.Generator. Attempt 0 translates the goal; later
// attempts run in repair mode with the previous candidate and error embedded.
// An empty return value signals a failed generation.
func (g *KQLGenerator) Generate(ctx context.Context, goal string, attempt int, repair *core.RepairContext) (string, error) {
	var user string
	if attempt == 0 || repair == nil {
		g.logger.Info("generating initial query", "goal", goal)
		user = goal
	} else {
		g.logger.Warn("generating repair", "attempt", attempt, "last_error", repair.LastError)
		user = repairPrompt(goal, repair)
	}

	raw, err := g.completer.Complete(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: g.systemPrompt},
		{Role: llm.RoleUser, Content: user},
	})
	if err != nil {
		return "", fmt.Errorf("generate query: %w", err)
	}

	return g.sanitize(raw), nil
}

// sanitize extracts valid KQL from model noise. It strips markdown fences,
// pulls out the table chain (tolerating leading let statements), prepends the
// table when the model answered with a bare pipe chain, and rejects output
// that never references the table at all.
func (g *KQLGenerator) sanitize(raw string) string {
	clean := strings.ReplaceAll(raw, "```kql", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	kql := clean
	if m := g.extractRe.FindStringSubmatch(clean); m != nil {
		kql = strings.TrimSpace(m[1])
	}

	if !g.tableRe.MatchString(kql) {
		if strings.HasPrefix(kql, "|") {
			return g.table + "\n" + kql
		}
		g.logger.Error("generated text is not a valid query", "output", kql)
		return ""
	}

	return kql
}
