package phase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func noValidation[T any](T) []string { return nil }

// TestRun_SucceedsFirstAttempt verifies a clean run makes exactly one call
// with a nil error context.
func TestRun_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	result, err := Run(
		func(_ context.Context, ec *ErrorContext[string]) (string, error) {
			calls++
			assert.Nil(t, ec)
			return "ok", nil
		},
		noValidation[string],
	)
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 1, calls)
}

// TestRun_RetriesAfterValidationFailure verifies the second attempt sees the
// validator's errors and the prior result.
func TestRun_RetriesAfterValidationFailure(t *testing.T) {
	calls := 0
	result, err := Run(
		func(_ context.Context, ec *ErrorContext[int]) (int, error) {
			calls++
			if calls == 1 {
				assert.Nil(t, ec)
				return -5, nil
			}
			require.NotNil(t, ec)
			assert.Equal(t, 1, ec.Attempt)
			assert.Equal(t, []string{"value must be non-negative"}, ec.Errors)
			require.NotNil(t, ec.PreviousResult)
			assert.Equal(t, -5, *ec.PreviousResult)
			return 5, nil
		},
		func(v int) []string {
			if v < 0 {
				return []string{"value must be non-negative"}
			}
			return nil
		},
		WithLogger(discardLogger()),
	)
	require.NoError(t, err)
	assert.Equal(t, 5, result)
	assert.Equal(t, 2, calls)
}

// TestRun_StageErrorFoldedIntoContext verifies a stage error becomes an
// "Exception: " entry with no previous result.
func TestRun_StageErrorFoldedIntoContext(t *testing.T) {
	calls := 0
	result, err := Run(
		func(_ context.Context, ec *ErrorContext[string]) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("upstream timeout")
			}
			require.NotNil(t, ec)
			assert.Equal(t, []string{"Exception: upstream timeout"}, ec.Errors)
			assert.Nil(t, ec.PreviousResult)
			return "recovered", nil
		},
		noValidation[string],
	)
	require.NoError(t, err)
	assert.Equal(t, "recovered", result)
}

// TestRun_Exhaustion verifies exactly maxRetries+1 attempts are made and the
// final attempt's errors appear in the error message.
func TestRun_Exhaustion(t *testing.T) {
	calls := 0
	_, err := Run(
		func(_ context.Context, _ *ErrorContext[int]) (int, error) {
			calls++
			return calls, nil
		},
		func(v int) []string {
			return []string{fmt.Sprintf("attempt %d rejected", v)}
		},
		WithMaxRetries(2),
		WithName("extraction"),
	)
	assert.Equal(t, 3, calls)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "extraction", exhausted.Phase)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Equal(t, []string{"attempt 3 rejected"}, exhausted.Errors)
	assert.Equal(t, "extraction failed after 3 attempts. Errors: [attempt 3 rejected]", err.Error())
}

// TestRun_ZeroRetries verifies WithMaxRetries(0) permits a single attempt.
func TestRun_ZeroRetries(t *testing.T) {
	calls := 0
	_, err := Run(
		func(_ context.Context, _ *ErrorContext[int]) (int, error) {
			calls++
			return 0, errors.New("boom")
		},
		noValidation[int],
		WithMaxRetries(0),
	)
	assert.Equal(t, 1, calls)

	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 1, exhausted.Attempts)
	assert.Equal(t, []string{"Exception: boom"}, exhausted.Errors)
}

// TestRun_DefaultMaxRetries verifies the default permits three attempts.
func TestRun_DefaultMaxRetries(t *testing.T) {
	calls := 0
	_, err := Run(
		func(_ context.Context, _ *ErrorContext[int]) (int, error) {
			calls++
			return 0, errors.New("boom")
		},
		noValidation[int],
	)
	assert.Equal(t, DefaultMaxRetries+1, calls)
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "phase", exhausted.Phase)
}

// TestRun_AttemptNumbersIncrease verifies each error context carries the
// 1-based attempt that produced it.
func TestRun_AttemptNumbersIncrease(t *testing.T) {
	var seen []int
	_, err := Run(
		func(_ context.Context, ec *ErrorContext[int]) (int, error) {
			if ec != nil {
				seen = append(seen, ec.Attempt)
			}
			return 0, nil
		},
		func(int) []string { return []string{"no"} },
		WithMaxRetries(3),
	)
	require.Error(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

// TestRunContext_PassesContext verifies the caller's context reaches the
// stage unchanged in value.
func TestRunContext_PassesContext(t *testing.T) {
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "payload")

	result, err := RunContext(ctx,
		func(ctx context.Context, _ *ErrorContext[string]) (string, error) {
			v, _ := ctx.Value(key{}).(string)
			return v, nil
		},
		noValidation[string],
	)
	require.NoError(t, err)
	assert.Equal(t, "payload", result)
}

// TestRun_NegativeMaxRetriesIgnored verifies negative retry counts fall back
// to the default.
func TestRun_NegativeMaxRetriesIgnored(t *testing.T) {
	calls := 0
	_, err := Run(
		func(_ context.Context, _ *ErrorContext[int]) (int, error) {
			calls++
			return 0, errors.New("boom")
		},
		noValidation[int],
		WithMaxRetries(-1),
	)
	require.Error(t, err)
	assert.Equal(t, DefaultMaxRetries+1, calls)
}
