package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records valueflow metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPhaseRun records a completed phase run with its retry count
	// and whether it ultimately succeeded.
	RecordPhaseRun(ctx context.Context, phase string, success bool, retries int)

	// RecordValidationFailure records one failed validation attempt.
	RecordValidationFailure(ctx context.Context, phase string)

	// RecordEvaluation records a formula evaluation with its duration and
	// error status.
	RecordEvaluation(ctx context.Context, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	phaseRuns          metric.Int64Counter
	phaseRetries       metric.Int64Counter
	phaseFailures      metric.Int64Counter
	validationFailures metric.Int64Counter
	formulaEvaluations metric.Int64Counter
	formulaLatency     metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("valueflow")

	phaseRuns, err := meter.Int64Counter("valueflow.phase.runs",
		metric.WithDescription("Number of phase runs"),
	)
	if err != nil {
		return nil, err
	}

	phaseRetries, err := meter.Int64Counter("valueflow.phase.retries",
		metric.WithDescription("Number of phase retry attempts"),
	)
	if err != nil {
		return nil, err
	}

	phaseFailures, err := meter.Int64Counter("valueflow.phase.failures",
		metric.WithDescription("Number of phases that exhausted all retries"),
	)
	if err != nil {
		return nil, err
	}

	validationFailures, err := meter.Int64Counter("valueflow.phase.validation_failures",
		metric.WithDescription("Number of failed validation attempts"),
	)
	if err != nil {
		return nil, err
	}

	formulaEvaluations, err := meter.Int64Counter("valueflow.formula.evaluations",
		metric.WithDescription("Number of formula evaluations"),
	)
	if err != nil {
		return nil, err
	}

	formulaLatency, err := meter.Float64Histogram("valueflow.formula.latency_ms",
		metric.WithDescription("Formula evaluation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		phaseRuns:          phaseRuns,
		phaseRetries:       phaseRetries,
		phaseFailures:      phaseFailures,
		validationFailures: validationFailures,
		formulaEvaluations: formulaEvaluations,
		formulaLatency:     formulaLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("valueflow metrics init failed, using noop recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordPhaseRun implements MetricsRecorder.
func (m *otelMetrics) RecordPhaseRun(ctx context.Context, phase string, success bool, retries int) {
	attrs := metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.Bool("success", success),
	)
	m.phaseRuns.Add(ctx, 1, attrs)
	if retries > 0 {
		m.phaseRetries.Add(ctx, int64(retries), metric.WithAttributes(attribute.String("phase", phase)))
	}
	if !success {
		m.phaseFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", phase)))
	}
}

// RecordValidationFailure implements MetricsRecorder.
func (m *otelMetrics) RecordValidationFailure(ctx context.Context, phase string) {
	m.validationFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("phase", phase)))
}

// RecordEvaluation implements MetricsRecorder.
func (m *otelMetrics) RecordEvaluation(ctx context.Context, duration time.Duration, err error) {
	m.formulaEvaluations.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("error", err != nil),
	))
	if err == nil {
		m.formulaLatency.Record(ctx, float64(duration.Milliseconds()))
	}
}
