package guard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hupe1980/kustopilot/core"
)

// Rule is a single guardrail step. Apply either passes the query through
// (possibly rewritten, as the row-cap rule does) or returns a security fault
// describing the violation. Rules must be stateless and safe for concurrent use.
type Rule interface {
	// Name identifies the rule in traces and metrics.
	Name() string
	Apply(query string) (string, error)
}

// controlCommandRule rejects queries that begin with the control-command
// prefix reserved for administrative operations.
type controlCommandRule struct{}

func (controlCommandRule) Name() string { return "control_command" }

func (controlCommandRule) Apply(query string) (string, error) {
	if strings.HasPrefix(strings.TrimSpace(query), ".") {
		return "", core.NewSecurityFault("control commands (starting with '.') are not allowed")
	}
	return query, nil
}

// blockedPatternRule rejects queries matching any configured dangerous
// pattern. Matching is case-insensitive across the whole text, not just the
// prefix, so an injected mutation verb in the middle of a query still trips it.
type blockedPatternRule struct {
	patterns []*regexp.Regexp
}

func newBlockedPatternRule(patterns []string) (*blockedPatternRule, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?im)" + p)
		if err != nil {
			return nil, fmt.Errorf("compile blocked pattern %q: %w", p, err)
		}
		compiled = append(compiled, re)
	}
	return &blockedPatternRule{patterns: compiled}, nil
}

func (*blockedPatternRule) Name() string { return "blocked_pattern" }

func (r *blockedPatternRule) Apply(query string) (string, error) {
	for _, re := range r.patterns {
		if re.MatchString(query) {
			return "", core.NewSecurityFault("blocked pattern detected: %s", re.String())
		}
	}
	return query, nil
}

// tableAccessRule requires the single permitted table name as a whole-word
// token anywhere in the text. Matching anywhere (not just the first token)
// tolerates leading let-bindings before the table reference.
type tableAccessRule struct {
	table string
	re    *regexp.Regexp
}

func newTableAccessRule(table string) *tableAccessRule {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(table) + `\b`)
	return &tableAccessRule{table: table, re: re}
}

func (r *tableAccessRule) Name() string { return "table_access" }

func (r *tableAccessRule) Apply(query string) (string, error) {
	if !r.re.MatchString(query) {
		return "", core.NewSecurityFault("access denied: query must target table %q", r.table)
	}
	return query, nil
}

// rowCapRule appends a default limit clause to raw-data queries that carry
// neither an aggregation keyword nor an explicit limit keyword. Whole-word
// matching keeps identifiers like "summarize_data" from bypassing the check.
// Applying the rule twice is a no-op: the appended clause contains a limit keyword.
type rowCapRule struct {
	cap         int
	aggregation *regexp.Regexp
	limit       *regexp.Regexp
}

func newRowCapRule(cap int, aggregationKeywords, limitKeywords []string) *rowCapRule {
	return &rowCapRule{
		cap:         cap,
		aggregation: keywordRegexp(aggregationKeywords),
		limit:       keywordRegexp(limitKeywords),
	}
}

func (r *rowCapRule) Name() string { return "row_cap" }

func (r *rowCapRule) Apply(query string) (string, error) {
	if r.aggregation.MatchString(query) || r.limit.MatchString(query) {
		return query, nil
	}
	return fmt.Sprintf("%s\n| take %d", query, r.cap), nil
}

func keywordRegexp(keywords []string) *regexp.Regexp {
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		quoted = append(quoted, regexp.QuoteMeta(kw))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}
