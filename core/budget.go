package core

import "time"

// RetryBudget bounds both repair lanes. A loop run performs at most
// MaxSemanticRetries+1 generation calls; the backoff controller performs at
// most MaxSystemRetries+1 executions with the delay doubling per retry.
type RetryBudget struct {
	MaxSemanticRetries int
	MaxSystemRetries   int
	BaseDelay          time.Duration
	Multiplier         float64
}

// DefaultRetryBudget returns the production defaults: three total generation
// tries, four total execution tries, 1s base delay doubling per retry.
func DefaultRetryBudget() RetryBudget {
	return RetryBudget{
		MaxSemanticRetries: 2,
		MaxSystemRetries:   3,
		BaseDelay:          time.Second,
		Multiplier:         2,
	}
}
