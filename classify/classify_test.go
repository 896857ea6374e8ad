package classify

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/kustopilot/core"
)

func TestClassifyTypedFaultsKeepTheirKind(t *testing.T) {
	c := New()

	assert.Equal(t, core.FaultSecurity, c.Classify(core.NewSecurityFault("blocked")))
	assert.Equal(t, core.FaultSemantic, c.Classify(core.NewSemanticFault("bad column")))
	assert.Equal(t, core.FaultSystem, c.Classify(core.NewSystemFault(nil, "down")))
}

func TestClassifyWrappedFault(t *testing.T) {
	c := New()

	wrapped := fmt.Errorf("execute: %w", core.NewSemanticFault("syntax"))
	assert.Equal(t, core.FaultSemantic, c.Classify(wrapped))
}

func TestClassifyServiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    core.FaultKind
	}{
		{"network wrapped by service", "Failed to process network request against cluster", core.FaultSystem},
		{"connection refused", "dial: connection refused", core.FaultSystem},
		{"timeout", "Request Timeout after 60s", core.FaultSystem},
		{"retries exceeded", "max retries exceeded contacting node", core.FaultSystem},
		{"unreachable", "endpoint unreachable", core.FaultSystem},
		{"syntax rejection", "Syntax error: query could not be parsed", core.FaultSemantic},
		{"unknown column", "'statuscode' could not be resolved", core.FaultSemantic},
	}

	c := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &core.ServiceError{Code: "BadRequest", Message: tt.message}
			assert.Equal(t, tt.want, c.Classify(err))
		})
	}
}

func TestClassifyUnrecognizedErrorsDefaultToSystem(t *testing.T) {
	c := New()

	// Raw transport failures never carry the service-error shape.
	assert.Equal(t, core.FaultSystem, c.Classify(errors.New("dial tcp 10.0.0.1:443: i/o timeout")))
	assert.Equal(t, core.FaultSystem, c.Classify(errors.New("something entirely new")))
}

func TestClassifyCustomIndicators(t *testing.T) {
	c := New("quota exceeded")

	assert.Equal(t, core.FaultSystem, c.Classify(&core.ServiceError{Message: "Quota Exceeded for cluster"}))
	// The default indicator set is replaced, not extended.
	assert.Equal(t, core.FaultSemantic, c.Classify(&core.ServiceError{Message: "connection refused"}))
}

func TestClassifyIsPure(t *testing.T) {
	c := New()
	err := &core.ServiceError{Message: "timeout"}

	first := c.Classify(err)
	second := c.Classify(err)
	assert.Equal(t, first, second)
}
