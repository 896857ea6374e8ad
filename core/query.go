package core

import "time"

// RepairContext carries the most recent failing attempt into the next
// generation call. It always reflects the latest failure, never an older one.
type RepairContext struct {
	LastCandidate string
	LastError     string
}

// Candidate is an unvalidated query string produced by the Generator together
// with the attempt index that produced it. Immutable once produced.
type Candidate struct {
	Text    string
	Attempt int
	Repair  *RepairContext // nil on the first attempt
}

// ValidatedQuery is a candidate that passed every guardrail rule, possibly
// with a row cap appended. Only the guard package creates these.
type ValidatedQuery struct {
	Text    string
	TraceID string
	Latency time.Duration
}

// Row is a single result row keyed by column name. The Executor owns all
// backend-specific serialization; temporal values arrive as RFC3339 strings.
type Row map[string]any
