package core

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFaultKindString(t *testing.T) {
	assert.Equal(t, "security", FaultSecurity.String())
	assert.Equal(t, "semantic", FaultSemantic.String())
	assert.Equal(t, "system", FaultSystem.String())
	assert.Equal(t, "unknown", FaultKind(99).String())
}

func TestFaultError(t *testing.T) {
	f := NewSecurityFault("blocked pattern detected: %s", ";")
	assert.Equal(t, "security fault: blocked pattern detected: ;", f.Error())
}

func TestFaultUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	f := NewSystemFault(cause, "backend unreachable")

	assert.ErrorIs(t, f, cause)

	var fault *Fault
	wrapped := fmt.Errorf("execute: %w", f)
	assert.True(t, errors.As(wrapped, &fault))
	assert.Equal(t, FaultSystem, fault.Kind)
}

func TestServiceErrorString(t *testing.T) {
	withCode := &ServiceError{Code: "BadRequest", Message: "Syntax error"}
	assert.Equal(t, "BadRequest: Syntax error", withCode.Error())

	plain := &ServiceError{Message: "Syntax error"}
	assert.Equal(t, "Syntax error", plain.Error())
}

func TestDefaultRetryBudget(t *testing.T) {
	b := DefaultRetryBudget()
	assert.Equal(t, 2, b.MaxSemanticRetries)
	assert.Equal(t, 3, b.MaxSystemRetries)
	assert.Equal(t, time.Second, b.BaseDelay)
	assert.Equal(t, 2.0, b.Multiplier)
}
