package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/kustopilot/core"
)

var errRefused = errors.New("dial tcp: connection refused")

func fastRunner(maxRetries int) *Runner {
	return New(func(o *Options) {
		o.MaxRetries = maxRetries
		o.BaseDelay = time.Millisecond
		o.Multiplier = 2
	})
}

func TestRunnerReturnsRowsOnFirstSuccess(t *testing.T) {
	r := fastRunner(3)
	calls := 0

	rows, err := r.Do(context.Background(), func(context.Context) ([]core.Row, error) {
		calls++
		return []core.Row{{"hits": int64(1)}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, calls)
}

func TestRunnerDoesNotRetrySemanticFaults(t *testing.T) {
	r := fastRunner(3)
	calls := 0
	semantic := &core.ServiceError{Code: "BadRequest", Message: "Syntax error: query could not be parsed"}

	_, err := r.Do(context.Background(), func(context.Context) ([]core.Row, error) {
		calls++
		return nil, semantic
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var svcErr *core.ServiceError
	assert.True(t, errors.As(err, &svcErr))
}

func TestRunnerRetriesSystemFaultsUntilSuccess(t *testing.T) {
	r := fastRunner(3)
	calls := 0

	rows, err := r.Do(context.Background(), func(context.Context) ([]core.Row, error) {
		calls++
		if calls < 3 {
			return nil, errRefused
		}
		return []core.Row{{"ok": true}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 3, calls)
}

func TestRunnerExhaustsBudgetAndReturnsLastError(t *testing.T) {
	r := fastRunner(2)
	calls := 0

	_, err := r.Do(context.Background(), func(context.Context) ([]core.Row, error) {
		calls++
		return nil, errRefused
	})
	require.Error(t, err)
	// First execution plus two retries.
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, errRefused)
}

func TestRunnerBackoffGrowsExponentially(t *testing.T) {
	r := New(func(o *Options) {
		o.MaxRetries = 2
		o.BaseDelay = 10 * time.Millisecond
		o.Multiplier = 2
	})

	start := time.Now()
	_, err := r.Do(context.Background(), func(context.Context) ([]core.Row, error) {
		return nil, errRefused
	})
	require.Error(t, err)
	// Waits are 10ms then 20ms before the budget runs out.
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRunnerBackoffResetsBetweenCalls(t *testing.T) {
	r := New(func(o *Options) {
		o.MaxRetries = 1
		o.BaseDelay = 5 * time.Millisecond
		o.Multiplier = 2
	})

	for i := 0; i < 2; i++ {
		start := time.Now()
		_, err := r.Do(context.Background(), func(context.Context) ([]core.Row, error) {
			return nil, errRefused
		})
		require.Error(t, err)
		elapsed := time.Since(start)
		assert.GreaterOrEqual(t, elapsed, 5*time.Millisecond)
		// A fresh schedule per call never carries the doubled delay over.
		assert.Less(t, elapsed, 100*time.Millisecond)
	}
}

func TestRunnerStopsOnContextCancel(t *testing.T) {
	r := New(func(o *Options) {
		o.MaxRetries = 10
		o.BaseDelay = time.Second
		o.Multiplier = 2
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Do(ctx, func(context.Context) ([]core.Row, error) {
		return nil, errRefused
	})
	assert.ErrorIs(t, err, context.Canceled)
}
