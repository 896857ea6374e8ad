package core

import "context"

// Generator produces a candidate query from a goal and, on repair attempts,
// the most recent failing candidate plus its error message. An empty string
// result signals a failed generation; the loop treats it as a semantic fault.
type Generator interface {
	Generate(ctx context.Context, goal string, attempt int, repair *RepairContext) (string, error)
}

// Executor runs a validated query against the backing store and returns its
// rows. Failures surface either as *ServiceError (query rejected by the
// service, message inspectable) or as raw transport errors; the classifier
// decides the lane. Implementations perform read-only operations only.
type Executor interface {
	Execute(ctx context.Context, query string) ([]Row, error)
	// Close releases the backing connection. Safe to call once after use.
	Close() error
}
