// Package core contains the shared data model and boundary interfaces of the
// kustopilot pipeline: candidates and validated queries, the fault taxonomy,
// trace events, retry budgets and the Generator/Executor contracts.
//
// The package has no dependencies, so every other package can import it
// without cycles. Types are plain values; a Candidate is immutable
// once produced and a ValidatedQuery is only ever created by the guard
// package after all rules pass.
package core
