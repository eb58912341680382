// Package observability provides structured logging and metrics for
// valueflow: phase attempts, retries, and formula evaluations.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds conversation context to a logger.
// Returns a new logger with conversation_id, phase, and attempt fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "conv-123", "formula generation", 1)
//	enriched.Info("doing work") // includes conversation_id, phase, attempt
func EnrichLogger(logger *slog.Logger, conversationID, phase string, attempt int) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("conversation_id", conversationID),
		slog.String("phase", phase),
		slog.Int("attempt", attempt),
	)
}

// LogPhaseRetry logs the start of a retry attempt.
func LogPhaseRetry(logger *slog.Logger, phase string, attempt, maxRetries int) {
	if logger == nil {
		return
	}
	logger.Info("phase retrying",
		slog.String("phase", phase),
		slog.Int("attempt", attempt),
		slog.Int("max_retries", maxRetries),
	)
}

// LogPhaseValidationFailed logs a validation failure on one attempt.
func LogPhaseValidationFailed(logger *slog.Logger, phase string, attempt, totalAttempts int, errs []string) {
	if logger == nil {
		return
	}
	logger.Warn("phase validation failed",
		slog.String("phase", phase),
		slog.Int("attempt", attempt),
		slog.Int("total_attempts", totalAttempts),
		slog.Any("errors", errs),
	)
}

// LogPhaseStageError logs a stage function returning an error.
func LogPhaseStageError(logger *slog.Logger, phase string, attempt, totalAttempts int, err error) {
	if logger == nil {
		return
	}
	logger.Warn("phase stage error",
		slog.String("phase", phase),
		slog.Int("attempt", attempt),
		slog.Int("total_attempts", totalAttempts),
		slog.String("error", err.Error()),
	)
}

// LogPhaseRecovered logs a phase succeeding after one or more retries.
func LogPhaseRecovered(logger *slog.Logger, phase string, retries int) {
	if logger == nil {
		return
	}
	logger.Info("phase succeeded after retries",
		slog.String("phase", phase),
		slog.Int("retries", retries),
	)
}

// LogPhaseExhausted logs a phase failing after all attempts.
func LogPhaseExhausted(logger *slog.Logger, phase string, attempts int, errs []string) {
	if logger == nil {
		return
	}
	logger.Error("phase exhausted retries",
		slog.String("phase", phase),
		slog.Int("attempts", attempts),
		slog.Any("errors", errs),
	)
}

// LogEvaluation logs a completed formula evaluation.
func LogEvaluation(logger *slog.Logger, formula, scale string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("formula evaluated",
		slog.String("formula", formula),
		slog.String("scale", scale),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEvaluationError logs a failed formula evaluation.
func LogEvaluationError(logger *slog.Logger, formula string, err error) {
	if logger == nil {
		return
	}
	logger.Error("formula evaluation failed",
		slog.String("formula", formula),
		slog.String("error", err.Error()),
	)
}

// LogExport logs a conversation store export.
func LogExport(logger *slog.Logger, conversationID string, valueCount int) {
	if logger == nil {
		return
	}
	logger.Info("conversation exported",
		slog.String("conversation_id", conversationID),
		slog.Int("values", valueCount),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
