// Package guard implements the safety validator for candidate queries.
//
// Validation is an ordered list of independently testable rules: a
// control-command prefix check, a configurable blocklist of dangerous
// patterns, an allowed-table whole-word requirement, and a row-cap normalizer
// that appends a default limit clause to unbounded raw-data queries. A
// candidate that passes every rule becomes a core.ValidatedQuery; a violation
// is surfaced as a security fault and drives a repair cycle upstream.
//
// Every invocation emits a REQUEST trace event before any check and exactly
// one terminal ACCEPTED or BLOCKED event, each under a freshly generated
// trace id.
package guard
