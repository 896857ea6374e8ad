// Package generator turns natural-language goals into candidate KQL queries
// via an llm.Completer.
//
// The first attempt translates the goal directly; repair attempts embed the
// previous failing query and its error message so the model debugs its own
// output instead of repeating it. Raw model output is sanitized before it
// leaves this package: markdown fences are stripped, the query chain is
// extracted, and text that never references the target table comes back as an
// empty candidate, which the loop treats as a semantic fault.
package generator
