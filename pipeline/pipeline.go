package pipeline

import (
	"context"
	"strings"

	"github.com/hupe1980/kustopilot/classify"
	"github.com/hupe1980/kustopilot/core"
	"github.com/hupe1980/kustopilot/guard"
	"github.com/hupe1980/kustopilot/logging"
	"github.com/hupe1980/kustopilot/metrics"
	"github.com/hupe1980/kustopilot/retry"
)

// Status discriminates the terminal outcome of a pipeline run.
type Status int

const (
	// StatusSuccess means a validated query executed and returned a row set
	// (possibly empty).
	StatusSuccess Status = iota
	// StatusRepairExhausted means every semantic repair attempt failed.
	StatusRepairExhausted
	// StatusBackendUnavailable means the backing store stayed unreachable
	// after the backoff budget was spent.
	StatusBackendUnavailable
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRepairExhausted:
		return "repair_exhausted"
	case StatusBackendUnavailable:
		return "backend_unavailable"
	default:
		return "unknown"
	}
}

// Generic user-facing messages for terminal outcomes. Raw backend error text
// and generated query text stay out of user replies.
const (
	// MsgRepairExhausted is shown when the semantic repair budget runs out.
	MsgRepairExhausted = "I tried to run the query multiple times, but I kept encountering technical errors. Please try rephrasing your request."
	// MsgBackendUnavailable is shown when the backing store is unreachable.
	MsgBackendUnavailable = "I encountered a system error connecting to the database."
	// MsgNoRows is shown for a successful query that matched nothing.
	MsgNoRows = "No data was found for your request."
)

// Result is the discriminated outcome of a run.
type Result struct {
	Status Status
	// Rows holds the result set on success.
	Rows []core.Row
	// Query is the validated query that succeeded. Internal use only.
	Query string
	// Attempts counts generation calls performed.
	Attempts int
	// Reply is a generic user-facing message for non-formatted outcomes
	// (failures and empty results).
	Reply string
}

// Options configure the pipeline.
type Options struct {
	// Budget bounds both repair lanes. Defaults to core.DefaultRetryBudget.
	Budget core.RetryBudget
	// Classifier decides fault lanes. Defaults to the standard classifier.
	Classifier *classify.Classifier
	// Retrier runs the execute stage. Defaults to a runner derived from
	// Budget and Classifier.
	Retrier *retry.Runner
	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Pipeline composes generator, validator and executor into the guarded,
// self-healing execution loop.
type Pipeline struct {
	generator  core.Generator
	validator  *guard.Validator
	executor   core.Executor
	classifier *classify.Classifier
	retrier    *retry.Runner
	budget     core.RetryBudget
	logger     logging.Logger
}

// New creates a pipeline around the three collaborators, applying option overrides.
func New(generator core.Generator, validator *guard.Validator, executor core.Executor, optFns ...func(o *Options)) *Pipeline {
	opts := Options{
		Budget: core.DefaultRetryBudget(),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Classifier == nil {
		opts.Classifier = classify.New()
	}
	if opts.Retrier == nil {
		opts.Retrier = retry.New(func(o *retry.Options) {
			o.MaxRetries = opts.Budget.MaxSystemRetries
			o.BaseDelay = opts.Budget.BaseDelay
			o.Multiplier = opts.Budget.Multiplier
			o.Classifier = opts.Classifier
			o.Logger = opts.Logger
		})
	}

	return &Pipeline{
		generator:  generator,
		validator:  validator,
		executor:   executor,
		classifier: opts.Classifier,
		retrier:    opts.Retrier,
		budget:     opts.Budget,
		logger:     logging.OrNoOp(opts.Logger),
	}
}

// Run executes the loop for one goal. The returned error is non-nil only for
// context cancellation; every domain outcome is encoded in the Result.
func (p *Pipeline) Run(ctx context.Context, goal string) (*Result, error) {
	var repair *core.RepairContext
	attempts := 0

	for attempt := 0; attempt <= p.budget.MaxSemanticRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mode := "initial"
		if attempt > 0 {
			mode = "repair"
			p.logger.Warn("attempting repair", "attempt", attempt, "last_error", repair.LastError)
		}
		metrics.GenerationAttempts.WithLabelValues(mode).Inc()
		attempts++

		candidate, err := p.generator.Generate(ctx, goal, attempt, repair)
		if err != nil || strings.TrimSpace(candidate) == "" {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// An empty or failed generation is a semantic fault: regenerating
			// with the message as context is the only productive move.
			msg := "generator returned an empty candidate"
			if err != nil {
				msg = err.Error()
			}
			p.logger.Warn("generation failed", "attempt", attempt, "error", msg)
			repair = &core.RepairContext{LastCandidate: candidate, LastError: msg}
			continue
		}

		validated, err := p.validator.Validate(core.Candidate{Text: candidate, Attempt: attempt, Repair: repair})
		if err != nil {
			// A guardrail rejection consumes the shared repair budget; the
			// rejection reason becomes the next repair context.
			p.logger.Warn("candidate blocked", "attempt", attempt, "error", err)
			repair = &core.RepairContext{LastCandidate: candidate, LastError: err.Error()}
			continue
		}

		rows, err := p.retrier.Do(ctx, func(ctx context.Context) ([]core.Row, error) {
			return p.executor.Execute(ctx, validated.Text)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if p.classifier.Classify(err) == core.FaultSystem {
				// The backoff budget is spent; the loop cannot fix this.
				p.logger.Error("backend unreachable after retries",
					"trace_id", validated.TraceID, "attempt", attempt, "error", err)
				metrics.PipelineOutcomes.WithLabelValues(StatusBackendUnavailable.String()).Inc()
				return &Result{Status: StatusBackendUnavailable, Attempts: attempts, Reply: MsgBackendUnavailable}, nil
			}

			p.logger.Warn("execution failed", "trace_id", validated.TraceID, "attempt", attempt, "error", err)
			repair = &core.RepairContext{LastCandidate: validated.Text, LastError: err.Error()}
			continue
		}

		p.logger.Info("query succeeded",
			"trace_id", validated.TraceID, "attempt", attempt, "rows", len(rows))
		metrics.PipelineOutcomes.WithLabelValues(StatusSuccess.String()).Inc()

		res := &Result{Status: StatusSuccess, Rows: rows, Query: validated.Text, Attempts: attempts}
		if len(rows) == 0 {
			res.Reply = MsgNoRows
		}
		return res, nil
	}

	p.logger.Error("all repair attempts failed", "attempts", attempts)
	metrics.PipelineOutcomes.WithLabelValues(StatusRepairExhausted.String()).Inc()
	return &Result{Status: StatusRepairExhausted, Attempts: attempts, Reply: MsgRepairExhausted}, nil
}
