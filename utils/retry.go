package utils

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
// MaxAttempts below 1 is treated as a single attempt.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Logger      *Logger
	// Retryable, when set, reports whether an error is worth another attempt.
	// Errors it rejects are returned unwrapped without waiting.
	Retryable func(error) bool
}

// Do executes fn with exponential back-off retry logic. With one attempt the
// error from fn is returned unwrapped, so callers can still match it with errors.As.
func (r *RetryConfig) Do(ctx context.Context, operationName string, fn func() error) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempts == 1 {
			return lastErr
		}
		if r.Retryable != nil && !r.Retryable(lastErr) {
			return lastErr
		}

		if attempt < attempts {
			r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v, retrying in %v",
				operationName, attempt, attempts, lastErr, delay)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s: %w", operationName, ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, attempts, lastErr)
}
