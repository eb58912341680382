package phase

import (
	"context"
	"log/slog"
	"sync"

	"github.com/randalmurphal/valueflow/pkg/valueflow/observability"
)

// Metrics holds aggregate counts across all phases run by one Executor.
type Metrics struct {
	// PhasesExecuted is the number of phases started.
	PhasesExecuted int
	// ValidationsFailed counts failed attempts, including stage errors.
	ValidationsFailed int
	// RetriesAttempted counts retry attempts (attempts after the first).
	RetriesAttempted int
	// RetriesSucceeded counts phases that succeeded after at least one retry.
	RetriesSucceeded int
	// PhasesFailed counts phases that exhausted all retries.
	PhasesFailed int
}

// Executor runs phases and tracks aggregate retry metrics across them.
// It is safe for use by a single pipeline; counts are guarded so a summary
// can be read while a phase runs.
type Executor struct {
	logger   *slog.Logger
	recorder observability.MetricsRecorder

	mu      sync.Mutex
	metrics Metrics
}

// NewExecutor creates an Executor. Both arguments may be nil: a nil logger
// disables logging and a nil recorder disables metrics.
func NewExecutor(logger *slog.Logger, recorder observability.MetricsRecorder) *Executor {
	if recorder == nil {
		recorder = observability.NoopMetrics{}
	}
	return &Executor{logger: logger, recorder: recorder}
}

// Execute runs one phase through the executor, counting attempts and
// outcomes. Options are applied after the executor's own logger and
// recorder, so callers can still override either per phase.
func Execute[T any](ex *Executor, stage StageFunc[T], validate ValidateFunc[T], opts ...Option) (T, error) {
	ex.bump(func(m *Metrics) { m.PhasesExecuted++ })

	retried := false
	countingStage := func(ctx context.Context, ec *ErrorContext[T]) (T, error) {
		if ec != nil {
			retried = true
			ex.bump(func(m *Metrics) { m.RetriesAttempted++ })
		}
		result, err := stage(ctx, ec)
		if err != nil {
			ex.bump(func(m *Metrics) { m.ValidationsFailed++ })
		}
		return result, err
	}

	countingValidate := func(v T) []string {
		errs := validate(v)
		if len(errs) > 0 {
			ex.bump(func(m *Metrics) { m.ValidationsFailed++ })
		}
		return errs
	}

	runOpts := append([]Option{WithLogger(ex.logger), WithMetrics(ex.recorder)}, opts...)
	result, err := Run(countingStage, countingValidate, runOpts...)

	if err != nil {
		ex.bump(func(m *Metrics) { m.PhasesFailed++ })
	} else if retried {
		ex.bump(func(m *Metrics) { m.RetriesSucceeded++ })
	}
	return result, err
}

func (ex *Executor) bump(fn func(*Metrics)) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	fn(&ex.metrics)
}

// Metrics returns a copy of the current aggregate counts.
func (ex *Executor) Metrics() Metrics {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.metrics
}

// LogSummary logs the aggregate retry counters.
func (ex *Executor) LogSummary() {
	if ex.logger == nil {
		return
	}
	m := ex.Metrics()
	attrs := []any{
		slog.Int("phases_executed", m.PhasesExecuted),
		slog.Int("validations_failed", m.ValidationsFailed),
		slog.Int("retries_attempted", m.RetriesAttempted),
		slog.Int("retries_succeeded", m.RetriesSucceeded),
		slog.Int("phases_failed", m.PhasesFailed),
	}
	if m.RetriesAttempted > 0 {
		rate := 100 * float64(m.RetriesSucceeded) / float64(m.RetriesAttempted)
		attrs = append(attrs, slog.Float64("retry_success_rate_pct", rate))
	}
	ex.logger.Info("phase execution summary", attrs...)
}
