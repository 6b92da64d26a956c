package daemon

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	lanternerr "github.com/lantern-wallet/lantern/pkg/errors"
)

// Sentinel errors for retry logic.
var (
	ErrRetryable = &lanternerr.LanternError{
		Code:     "RETRYABLE_ERROR",
		Message:  "retryable error",
		ExitCode: lanternerr.ExitGeneral,
	}

	ErrRateLimited = &lanternerr.LanternError{
		Code:     "RATE_LIMITED",
		Message:  "rate limited by node",
		ExitCode: lanternerr.ExitGeneral,
	}
)

// RetryConfig configures retry behavior.
type RetryConfig struct {
	MaxAttempts int           // Maximum number of attempts (including initial)
	BaseDelay   time.Duration // Initial delay between retries
	MaxDelay    time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns the default retry configuration:
// 3 attempts total with delays 500ms, 1s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// RetryWithConfig executes the operation with exponential backoff,
// retrying only errors marked retryable.
func RetryWithConfig(ctx context.Context, cfg RetryConfig, operation func() error) error {
	var err error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err = operation()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}

		if attempt < cfg.MaxAttempts-1 {
			timer := time.NewTimer(calculateDelay(attempt, cfg.BaseDelay, cfg.MaxDelay))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}
	return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxAttempts, err)
}

// calculateDelay applies exponential backoff with jitter. Jitter
// prevents thundering herd when multiple goroutines retry at once.
func calculateDelay(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := baseDelay * (1 << attempt)
	if delay > maxDelay {
		delay = maxDelay
	}
	// Random duration in [delay/2, delay).
	half := delay / 2
	return half + rand.N(half) //nolint:gosec // G404: jitter does not need cryptographic randomness
}

// IsRetryable returns true if the error should trigger a retry.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrRetryable) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, context.DeadlineExceeded)
}

// WrapRetryable wraps an error to mark it as retryable.
func WrapRetryable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRetryable, err)
}
