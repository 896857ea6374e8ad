// Package metrics exposes Prometheus collectors for the query pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ValidatorVerdicts tracks guardrail outcomes per rule
	ValidatorVerdicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kustopilot_validator_verdicts_total",
			Help: "Total number of validator verdicts",
		},
		[]string{"verdict", "rule"},
	)

	// ValidationLatency tracks guardrail evaluation latency
	ValidationLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kustopilot_validation_latency_seconds",
			Help:    "Guardrail evaluation latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// GenerationAttempts tracks generator calls per attempt mode
	GenerationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kustopilot_generation_attempts_total",
			Help: "Total number of query generation attempts",
		},
		[]string{"mode"},
	)

	// ExecutorRetries tracks backoff retries against the backing store
	ExecutorRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kustopilot_executor_retries_total",
			Help: "Total number of executor retries after system faults",
		},
	)

	// PipelineOutcomes tracks terminal pipeline results
	PipelineOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kustopilot_pipeline_outcomes_total",
			Help: "Total number of terminal pipeline outcomes",
		},
		[]string{"outcome"},
	)
)
