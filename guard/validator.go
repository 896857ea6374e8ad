package guard

import (
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/kustopilot/core"
	"github.com/hupe1980/kustopilot/logging"
	"github.com/hupe1980/kustopilot/metrics"
)

// Default guardrail policy, matching the production cluster setup.
var (
	// DefaultAllowedTable is the single permitted target table.
	DefaultAllowedTable = "API_gateway"

	// DefaultBlockedPatterns rejects control commands, structural mutation
	// verbs and the statement separator used for injection.
	DefaultBlockedPatterns = []string{
		`^\s*\.`,
		`\.drop\b`,
		`\.alter\b`,
		`\.create\b`,
		`\.set\b`,
		`\.ingest\b`,
		`;`,
	}

	// DefaultAggregationKeywords mark a query as aggregated (already bounded).
	DefaultAggregationKeywords = []string{"summarize", "count", "render"}

	// DefaultLimitKeywords mark a query as explicitly row-limited.
	DefaultLimitKeywords = []string{"take", "limit", "top"}

	// DefaultRowCap is appended to unbounded raw-data queries.
	DefaultRowCap = 50
)

// Options configure the validator.
type Options struct {
	AllowedTable        string
	BlockedPatterns     []string
	AggregationKeywords []string
	LimitKeywords       []string
	RowCap              int

	// Sink receives REQUEST/ACCEPTED/BLOCKED trace events. Defaults to a
	// sink that writes through the Logger.
	Sink core.TraceSink

	// Logger defaults to NoOp.
	Logger logging.Logger
}

// Validator runs the guardrail rule chain over candidate queries.
type Validator struct {
	rules  []Rule
	sink   core.TraceSink
	logger logging.Logger
}

// New creates a validator with the default policy, applying any option
// overrides. It fails only when a configured blocked pattern does not compile.
func New(optFns ...func(o *Options)) (*Validator, error) {
	opts := Options{
		AllowedTable:        DefaultAllowedTable,
		BlockedPatterns:     DefaultBlockedPatterns,
		AggregationKeywords: DefaultAggregationKeywords,
		LimitKeywords:       DefaultLimitKeywords,
		RowCap:              DefaultRowCap,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	opts.Logger = logging.OrNoOp(opts.Logger)
	if opts.Sink == nil {
		opts.Sink = NewLogSink(opts.Logger)
	}

	blocked, err := newBlockedPatternRule(opts.BlockedPatterns)
	if err != nil {
		return nil, err
	}

	// Order matters: cheap prefix check first, normalization last so the
	// appended clause is never itself subject to the blocklist.
	rules := []Rule{
		controlCommandRule{},
		blocked,
		newTableAccessRule(opts.AllowedTable),
		newRowCapRule(opts.RowCap, opts.AggregationKeywords, opts.LimitKeywords),
	}

	return &Validator{rules: rules, sink: opts.Sink, logger: opts.Logger}, nil
}

// Validate runs every rule in order and returns a ValidatedQuery on success.
// On rejection it returns a security fault; the failing rule and reason are
// recorded in the BLOCKED trace event.
func (v *Validator) Validate(c core.Candidate) (*core.ValidatedQuery, error) {
	traceID := uuid.NewString()
	start := time.Now()

	v.sink.Emit(core.TraceEvent{
		TraceID: traceID,
		Stage:   core.StageRequest,
		Payload: map[string]any{"candidate": c.Text, "attempt": c.Attempt},
	})

	query := c.Text
	for _, rule := range v.rules {
		next, err := rule.Apply(query)
		if err != nil {
			latency := time.Since(start)
			v.sink.Emit(core.TraceEvent{
				TraceID: traceID,
				Stage:   core.StageBlocked,
				Payload: map[string]any{"rule": rule.Name(), "error": err.Error(), "latency": latency.Seconds()},
			})
			metrics.ValidatorVerdicts.WithLabelValues("blocked", rule.Name()).Inc()
			metrics.ValidationLatency.Observe(latency.Seconds())
			return nil, err
		}
		query = next
	}

	latency := time.Since(start)
	v.sink.Emit(core.TraceEvent{
		TraceID: traceID,
		Stage:   core.StageAccepted,
		Payload: map[string]any{"latency": latency.Seconds()},
	})
	metrics.ValidatorVerdicts.WithLabelValues("accepted", "").Inc()
	metrics.ValidationLatency.Observe(latency.Seconds())

	return &core.ValidatedQuery{Text: query, TraceID: traceID, Latency: latency}, nil
}
