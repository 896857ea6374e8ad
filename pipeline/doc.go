// Package pipeline implements the self-healing query loop.
//
// A run is a bounded state machine over the attempt index: Generate ->
// Validate -> Execute -> Classify -> Succeed | RepairRetry | Abort. Semantic
// and security faults feed the failing candidate and its error message back
// into the next generation call as repair context; system faults are retried
// with backoff inside the execute stage and abort the run once that budget is
// exhausted. The first successful execution returns immediately.
//
// Terminal outcomes are an explicit discriminated Result rather than error
// values: callers branch on Result.Status and show Result.Reply, which never
// contains raw backend errors or query text.
package pipeline
