// Package classify maps raw failures onto the pipeline's fault taxonomy.
//
// The classifier is a pure function over its input: already-typed faults keep
// their kind, structured service rejections are scanned for infrastructure
// keywords (the query service wraps some network failures in its own error
// shape), and anything unrecognized defaults to a system fault. The fail-safe
// bias is deliberate: the repair loop cannot fix an unreachable backend, so
// ambiguity must not burn the limited semantic-repair budget.
package classify

import (
	"errors"
	"strings"

	"github.com/hupe1980/kustopilot/core"
)

// DefaultSystemIndicators are substrings of service-error messages that mark
// the failure as infrastructure rather than query logic.
var DefaultSystemIndicators = []string{
	"failed to process network request",
	"connection refused",
	"timeout",
	"max retries exceeded",
	"endpoint unreachable",
}

// Classifier assigns a core.FaultKind to raw errors. The zero value is not
// usable; construct via New.
type Classifier struct {
	indicators []string
}

// New creates a classifier. With no overrides the default indicator set is used.
func New(indicators ...string) *Classifier {
	if len(indicators) == 0 {
		indicators = DefaultSystemIndicators
	}
	lowered := make([]string, len(indicators))
	for i, s := range indicators {
		lowered[i] = strings.ToLower(s)
	}
	return &Classifier{indicators: lowered}
}

// Classify never fails: every error lands in exactly one lane.
func (c *Classifier) Classify(err error) core.FaultKind {
	var fault *core.Fault
	if errors.As(err, &fault) {
		return fault.Kind
	}

	var svcErr *core.ServiceError
	if errors.As(err, &svcErr) {
		msg := strings.ToLower(svcErr.Message)
		for _, indicator := range c.indicators {
			if strings.Contains(msg, indicator) {
				return core.FaultSystem
			}
		}
		// A genuine service rejection with no network keywords is a query
		// logic problem the generator can repair.
		return core.FaultSemantic
	}

	// Raw transport/auth/DNS failures never carry the service-error shape.
	return core.FaultSystem
}
