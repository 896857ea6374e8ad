// Package retry executes backend operations with exponential backoff scoped
// to system faults.
//
// The runner invokes an operation up to maxRetries+1 times. A failure the
// classifier marks as a system fault suspends the goroutine for the current
// delay (base, then doubling per retry by default) and tries again; any other
// failure is not retryable at this layer and propagates immediately so the
// repair loop can act on it. Delay state resets for every Do call.
package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/hupe1980/kustopilot/classify"
	"github.com/hupe1980/kustopilot/core"
	"github.com/hupe1980/kustopilot/logging"
	"github.com/hupe1980/kustopilot/metrics"
)

// Operation is a single unit of retryable work returning result rows.
type Operation func(ctx context.Context) ([]core.Row, error)

// Options configure the runner.
type Options struct {
	// MaxRetries bounds retries after the first execution (default 3).
	MaxRetries int
	// BaseDelay is the first backoff wait (default 1s).
	BaseDelay time.Duration
	// Multiplier scales the delay per retry (default 2).
	Multiplier float64
	// Classifier decides which failures are retryable. Defaults to the
	// standard classifier.
	Classifier *classify.Classifier
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Runner executes operations with classifier-scoped exponential backoff.
type Runner struct {
	maxRetries uint64
	base       time.Duration
	multiplier float64
	classifier *classify.Classifier
	logger     logging.Logger
}

// New creates a runner with production defaults, applying option overrides.
func New(optFns ...func(o *Options)) *Runner {
	budget := core.DefaultRetryBudget()
	opts := Options{
		MaxRetries: budget.MaxSystemRetries,
		BaseDelay:  budget.BaseDelay,
		Multiplier: budget.Multiplier,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Classifier == nil {
		opts.Classifier = classify.New()
	}

	return &Runner{
		maxRetries: uint64(opts.MaxRetries),
		base:       opts.BaseDelay,
		multiplier: opts.Multiplier,
		classifier: opts.Classifier,
		logger:     logging.OrNoOp(opts.Logger),
	}
}

// Do runs op until it succeeds, fails with a non-system fault, or the system
// retry budget is exhausted. The final system fault is returned as-is so the
// caller can distinguish it from a repairable failure.
func (r *Runner) Do(ctx context.Context, op Operation) ([]core.Row, error) {
	var rows []core.Row
	attempt := 0

	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		if attempt > 0 {
			metrics.ExecutorRetries.Inc()
		}
		attempt++

		var opErr error
		rows, opErr = op(ctx)
		if opErr == nil {
			return nil
		}

		if r.classifier.Classify(opErr) == core.FaultSystem {
			r.logger.Warn("system fault, retrying with backoff",
				"attempt", attempt, "max_retries", r.maxRetries, "error", opErr)
			return retry.RetryableError(opErr)
		}

		// Not retryable here: fail fast so the generator can see the message.
		return opErr
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// backoff builds a fresh exponential schedule: base, base*multiplier, ...
// capped at maxRetries waits. A new schedule per Do call keeps invocations
// independent.
func (r *Runner) backoff() retry.Backoff {
	next := r.base
	b := retry.BackoffFunc(func() (time.Duration, bool) {
		d := next
		next = time.Duration(float64(next) * r.multiplier)
		return d, false
	})
	return retry.WithMaxRetries(r.maxRetries, b)
}
