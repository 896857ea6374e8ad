package guard

import (
	"github.com/hupe1980/kustopilot/core"
	"github.com/hupe1980/kustopilot/logging"
)

// LogSink routes trace events to a Logger. BLOCKED events are logged at
// error level so alerting can key on them; REQUEST and ACCEPTED at info.
type LogSink struct {
	logger logging.Logger
}

// NewLogSink creates a LogSink wrapping the given logger.
func NewLogSink(logger logging.Logger) *LogSink {
	return &LogSink{logger: logging.OrNoOp(logger)}
}

// Emit implements core.TraceSink.
func (s *LogSink) Emit(ev core.TraceEvent) {
	args := make([]any, 0, 4+2*len(ev.Payload))
	args = append(args, "trace_id", ev.TraceID, "stage", string(ev.Stage))
	for k, v := range ev.Payload {
		args = append(args, k, v)
	}

	if ev.Stage == core.StageBlocked {
		s.logger.Error("guardrail verdict", args...)
		return
	}
	s.logger.Info("guardrail verdict", args...)
}
