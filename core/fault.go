package core

import "fmt"

// FaultKind places a failure into one of the two repair lanes (plus the
// guardrail lane). Security and Semantic faults are fixable by regenerating
// the query; System faults are fixable only by waiting and retrying.
type FaultKind int

const (
	// FaultSecurity is a guardrail rejection. It originates exclusively from
	// the Safety Validator and drives a repair cycle at the loop layer.
	FaultSecurity FaultKind = iota
	// FaultSemantic is a flaw in the candidate itself (bad column, syntax
	// error, empty generation). Retryable within the semantic budget.
	FaultSemantic
	// FaultSystem is an infrastructure failure (network, auth, DNS).
	// Retryable only via backoff; fatal once that budget is exhausted.
	FaultSystem
)

// String returns the string representation of the fault kind.
func (k FaultKind) String() string {
	switch k {
	case FaultSecurity:
		return "security"
	case FaultSemantic:
		return "semantic"
	case FaultSystem:
		return "system"
	default:
		return "unknown"
	}
}

// Fault is a classified pipeline failure. The Message is safe to thread back
// into the generator as repair context; it is never shown to the end caller.
type Fault struct {
	Kind    FaultKind
	Message string
	Err     error // optional underlying cause
}

// Error implements the error interface.
func (f *Fault) Error() string {
	return fmt.Sprintf("%s fault: %s", f.Kind, f.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (f *Fault) Unwrap() error { return f.Err }

// NewSecurityFault creates a guardrail rejection fault.
func NewSecurityFault(format string, args ...any) *Fault {
	return &Fault{Kind: FaultSecurity, Message: fmt.Sprintf(format, args...)}
}

// NewSemanticFault creates a candidate-content fault.
func NewSemanticFault(format string, args ...any) *Fault {
	return &Fault{Kind: FaultSemantic, Message: fmt.Sprintf(format, args...)}
}

// NewSystemFault creates an infrastructure fault wrapping its cause.
func NewSystemFault(err error, format string, args ...any) *Fault {
	return &Fault{Kind: FaultSystem, Message: fmt.Sprintf(format, args...), Err: err}
}

// ServiceError is a structured rejection returned by the backing store's
// query service. The classifier inspects its message: the service wraps some
// network failures in this shape, so the text decides the lane.
type ServiceError struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}
