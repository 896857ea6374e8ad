// Package kustopilot provides a high-level façade over the guarded query
// pipeline (generation, validation, bounded repair and retry) enabling rapid
// construction of natural-language analytics assistants. Most applications
// interact with this package by:
//  1. Creating a Copilot via New() with a generator and an executor
//  2. Calling Ask() with the user's goal
//  3. Switching on the discriminated Result status
//
// The façade delegates orchestration to pipeline.Pipeline while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a guardrail policy and a
// structured logger.
package kustopilot

import (
	"context"

	"github.com/hupe1980/kustopilot/classify"
	"github.com/hupe1980/kustopilot/core"
	"github.com/hupe1980/kustopilot/guard"
	"github.com/hupe1980/kustopilot/logging"
	"github.com/hupe1980/kustopilot/pipeline"
)

// Options configures the Copilot instance.
type Options struct {
	// Validator enforces the guardrail policy. Defaults to the standard
	// policy when nil.
	Validator *guard.Validator

	// Classifier decides fault lanes. Defaults to the standard classifier.
	Classifier *classify.Classifier

	// Budget bounds the repair loop and the backoff controller.
	Budget core.RetryBudget

	// TraceSink receives guardrail trace events when the default validator
	// is built. Ignored when Validator is set.
	TraceSink core.TraceSink

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Copilot is the high-level façade aggregating the pipeline and its
// collaborators.
type Copilot struct {
	pipeline *pipeline.Pipeline
	executor core.Executor
}

// New creates a Copilot around a generator and an executor with optional
// overrides. Any unset collaborator is initialized with its default.
func New(generator core.Generator, executor core.Executor, optFns ...func(o *Options)) (*Copilot, error) {
	opts := Options{
		Budget: core.DefaultRetryBudget(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Validator == nil {
		v, err := guard.New(func(o *guard.Options) {
			o.Sink = opts.TraceSink
			o.Logger = opts.Logger
		})
		if err != nil {
			return nil, err
		}
		opts.Validator = v
	}
	if opts.Classifier == nil {
		opts.Classifier = classify.New()
	}

	p := pipeline.New(generator, opts.Validator, executor, func(o *pipeline.Options) {
		o.Budget = opts.Budget
		o.Classifier = opts.Classifier
		o.Logger = opts.Logger
	})

	return &Copilot{pipeline: p, executor: executor}, nil
}

// Ask runs the guarded pipeline for one natural-language goal.
func (c *Copilot) Ask(ctx context.Context, goal string) (*pipeline.Result, error) {
	return c.pipeline.Run(ctx, goal)
}

// Close releases the executor's resources.
func (c *Copilot) Close() error {
	return c.executor.Close()
}
