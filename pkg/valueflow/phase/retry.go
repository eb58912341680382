package phase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/randalmurphal/valueflow/pkg/valueflow/observability"
)

// ErrorContext carries feedback from a failed attempt into the next one.
type ErrorContext[T any] struct {
	// Attempt is the 1-based index of the attempt that failed.
	Attempt int

	// Errors holds the validator's error strings, or a single
	// "Exception: ..." entry when the stage itself returned an error.
	Errors []string

	// PreviousResult is the invalid result from the failed attempt,
	// or nil when the stage returned an error instead of a result.
	PreviousResult *T
}

// StageFunc produces a result, possibly using feedback from a prior
// failed attempt. ec is nil on the first attempt.
type StageFunc[T any] func(ctx context.Context, ec *ErrorContext[T]) (T, error)

// ValidateFunc checks a stage result and returns error strings.
// An empty slice means the result is valid.
type ValidateFunc[T any] func(T) []string

// ExhaustedError indicates a phase failed validation on every attempt.
type ExhaustedError struct {
	// Phase is the phase name used for logging.
	Phase string
	// Attempts is the total number of attempts made (retries + 1).
	Attempts int
	// Errors holds the final attempt's errors.
	Errors []string
}

// Error implements the error interface.
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts. Errors: [%s]",
		e.Phase, e.Attempts, strings.Join(e.Errors, "; "))
}

// DefaultMaxRetries is the retry bound used when WithMaxRetries is not given.
const DefaultMaxRetries = 2

// config holds run configuration.
type config struct {
	maxRetries int
	name       string
	logger     *slog.Logger
	metrics    observability.MetricsRecorder
	spans      observability.SpanManager
}

func defaultConfig() config {
	return config{
		maxRetries: DefaultMaxRetries,
		name:       "phase",
		metrics:    observability.NoopMetrics{},
		spans:      observability.NoopSpanManager{},
	}
}

// Option configures a phase run.
type Option func(*config)

// WithMaxRetries sets the number of retries after the initial attempt.
// Default: DefaultMaxRetries. Negative values are ignored.
func WithMaxRetries(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithName sets the phase name used in logs and errors.
func WithName(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = name
		}
	}
}

// WithLogger sets the logger for retry progress. Nil disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *config) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithSpans enables per-attempt tracing spans.
func WithSpans(s observability.SpanManager) Option {
	return func(c *config) {
		if s != nil {
			c.spans = s
		}
	}
}

// Run executes a stage with validation and bounded retry.
// See RunContext for details.
func Run[T any](stage StageFunc[T], validate ValidateFunc[T], opts ...Option) (T, error) {
	return RunContext(context.Background(), stage, validate, opts...)
}

// RunContext executes a stage with validation and bounded retry.
//
// The first attempt calls the stage with a nil ErrorContext. After each
// attempt the validator runs; an empty error list is success. A non-empty
// list, or an error returned by the stage itself, becomes the ErrorContext
// for the next attempt. After maxRetries+1 attempts without success the
// run fails with *ExhaustedError carrying the final attempt's errors.
//
// ctx is handed through to the stage; the engine itself bounds attempt
// count only.
func RunContext[T any](ctx context.Context, stage StageFunc[T], validate ValidateFunc[T], opts ...Option) (T, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	totalAttempts := cfg.maxRetries + 1
	var ec *ErrorContext[T]

	for attempt := 0; attempt < totalAttempts; attempt++ {
		if attempt > 0 {
			observability.LogPhaseRetry(cfg.logger, cfg.name, attempt, cfg.maxRetries)
		}

		attemptCtx, span := cfg.spans.StartPhaseSpan(ctx, cfg.name, attempt+1)
		result, err := stage(attemptCtx, ec)

		if err != nil {
			cfg.spans.EndSpanWithError(span, err)
			observability.LogPhaseStageError(cfg.logger, cfg.name, attempt+1, totalAttempts, err)
			cfg.metrics.RecordValidationFailure(ctx, cfg.name)
			ec = &ErrorContext[T]{
				Attempt: attempt + 1,
				Errors:  []string{"Exception: " + err.Error()},
			}
			continue
		}

		errs := validate(result)
		if len(errs) == 0 {
			cfg.spans.EndSpanWithError(span, nil)
			if attempt > 0 {
				observability.LogPhaseRecovered(cfg.logger, cfg.name, attempt)
			}
			cfg.metrics.RecordPhaseRun(ctx, cfg.name, true, attempt)
			return result, nil
		}

		cfg.spans.EndSpanWithError(span, fmt.Errorf("validation failed: %s", strings.Join(errs, "; ")))
		observability.LogPhaseValidationFailed(cfg.logger, cfg.name, attempt+1, totalAttempts, errs)
		cfg.metrics.RecordValidationFailure(ctx, cfg.name)

		prior := result
		ec = &ErrorContext[T]{
			Attempt:        attempt + 1,
			Errors:         errs,
			PreviousResult: &prior,
		}
	}

	finalErrors := []string{"unknown error"}
	if ec != nil {
		finalErrors = ec.Errors
	}
	observability.LogPhaseExhausted(cfg.logger, cfg.name, totalAttempts, finalErrors)
	cfg.metrics.RecordPhaseRun(ctx, cfg.name, false, cfg.maxRetries)

	var zero T
	return zero, &ExhaustedError{Phase: cfg.name, Attempts: totalAttempts, Errors: finalErrors}
}
