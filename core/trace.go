package core

// TraceStage identifies where in a validation a trace event was emitted.
type TraceStage string

const (
	// StageRequest is emitted before any guardrail check runs.
	StageRequest TraceStage = "REQUEST"
	// StageAccepted is the terminal stage for a candidate that passed.
	StageAccepted TraceStage = "ACCEPTED"
	// StageBlocked is the terminal stage for a rejected candidate. Sinks must
	// keep it distinguishable from the other stages for alerting.
	StageBlocked TraceStage = "BLOCKED"
)

// TraceEvent is a single audit record for one validator invocation. Each
// invocation gets a freshly generated trace id that is never reused.
type TraceEvent struct {
	TraceID string
	Stage   TraceStage
	Payload map[string]any
}

// TraceSink receives trace events. Implementations must be safe for
// concurrent use; validation runs on arbitrary request goroutines.
type TraceSink interface {
	Emit(ev TraceEvent)
}

// NoOpTraceSink discards all trace events. Useful for tests.
type NoOpTraceSink struct{}

// Emit implements TraceSink.
func (NoOpTraceSink) Emit(TraceEvent) {}
