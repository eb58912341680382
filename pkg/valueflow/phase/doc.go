/*
Package phase provides bounded retry with validation feedback for fallible
pipeline stages.

# Overview

A phase is one fallible, retry-eligible unit of work: a stage function that
may return an error, or may succeed but produce semantically invalid output.
The engine invokes the stage, validates its result with an injected
predicate, and retries up to a bound, feeding structured error context back
into each retry.

The engine knows nothing about what the stage or validator do. Any stage can
be adapted to the contract:

	stage    func(ctx context.Context, ec *phase.ErrorContext[T]) (T, error)
	validate func(T) []string

The validator returns a list of error strings; an empty list means the
result is valid. A stage error and a failed validation are treated
identically: both become an ErrorContext for the next attempt.

# Usage

	result, err := phase.Run(generate, validatePlan,
	    phase.WithName("formula generation"),
	    phase.WithMaxRetries(2),
	)
	if err != nil {
	    var exhausted *phase.ExhaustedError
	    if errors.As(err, &exhausted) {
	        // exhausted.Errors holds the final attempt's validation errors
	    }
	}

The engine bounds attempt count only, never wall-clock time. A stage that
performs network I/O owns its own timeout and cancellation policy; the
context passed to Run is handed through to the stage untouched.

# Aggregate tracking

Executor wraps Run and accumulates metrics across many phases of a
pipeline: executions, validation failures, retries attempted, retries that
led to success, and terminal failures.
*/
package phase
