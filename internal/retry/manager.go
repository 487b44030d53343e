package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/corewget/rangedl/pkg/errors"
)

// RetryManager retries an operation with exponential backoff.
type RetryManager struct {
	MaxRetries    int           // Maximum number of retry attempts
	BaseDelay     time.Duration // Base delay for the first retry
	MaxDelay      time.Duration // Maximum delay between retries
	BackoffFactor float64       // Multiplier for exponential backoff
	Jitter        bool          // Whether to add jitter to delays
}

// ShouldRetry determines whether an error should be retried based on the error type and attempt number.
func (rm *RetryManager) ShouldRetry(err error, attempt int) bool {
	// Don't retry if we've exceeded the maximum number of retries
	if attempt >= rm.MaxRetries {
		return false
	}

	// Check if the error is retryable using the error package's logic
	return errors.IsRetryable(err)
}

// NextDelay calculates the delay for the next retry attempt using exponential backoff.
func (rm *RetryManager) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return rm.BaseDelay
	}

	// For very large attempt numbers, avoid overflow by returning MaxDelay early
	if attempt > 50 {
		delay := rm.MaxDelay
		if rm.Jitter {
			delay = rm.addJitter(delay)
		}
		return delay
	}

	// Calculate exponential backoff: baseDelay * (backoffFactor ^ attempt)
	power := math.Pow(rm.BackoffFactor, float64(attempt))

	// Check for potential overflow before converting to Duration
	if power > float64(rm.MaxDelay)/float64(rm.BaseDelay) {
		delay := rm.MaxDelay
		if rm.Jitter {
			delay = rm.addJitter(delay)
		}
		return delay
	}

	delay := time.Duration(float64(rm.BaseDelay) * power)

	// Apply maximum delay cap
	if delay > rm.MaxDelay || delay < 0 { // Check for negative values (overflow)
		delay = rm.MaxDelay
	}

	// Apply jitter if enabled
	if rm.Jitter {
		delay = rm.addJitter(delay)
	}

	return delay
}

// addJitter adds randomness to the delay to prevent thundering herd problems.
func (rm *RetryManager) addJitter(delay time.Duration) time.Duration {
	// Add up to ±10% jitter
	jitterRange := 0.1
	// #nosec G404 -- Jitter for retry delays doesn't require cryptographic randomness
	jitter := time.Duration(float64(delay) * jitterRange * (rand.Float64()*2 - 1))
	jitteredDelay := delay + jitter

	// Ensure the delay doesn't become negative
	if jitteredDelay < 0 {
		jitteredDelay = delay
	}

	return jitteredDelay
}

// ExecuteWithRetry executes an operation with retry logic using the manager's configuration.
func (rm *RetryManager) ExecuteWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= rm.MaxRetries; attempt++ {
		// Check if context is cancelled before attempting
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Execute the operation
		err := operation()
		if err == nil {
			return nil // Success
		}

		lastErr = err

		// Check if we should retry this error and if we have attempts left
		if !rm.ShouldRetry(err, attempt) {
			return fmt.Errorf(
				"operation failed after %d attempt(s) (non-retryable error): %w",
				attempt+1,
				err,
			)
		}

		// Check if this was the last attempt
		if attempt >= rm.MaxRetries {
			break
		}

		// Calculate delay and wait before next attempt
		delay := rm.NextDelay(attempt)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			// Continue to next attempt
		}
	}

	// All retries exhausted
	return fmt.Errorf("operation failed after %d attempt(s): %w", rm.MaxRetries+1, lastErr)
}

// Predefined retry managers for the two retry policies the downloader needs.

// ProbeRetryManager returns the retry policy used when resolving remote
// file info: 3 attempts, 1s base delay, 10s cap, factor 2.
func ProbeRetryManager() *RetryManager {
	return &RetryManager{
		MaxRetries:    2,
		BaseDelay:     1 * time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// WorkerRetryManager returns the retry policy used by individual range
// fetch workers: 5 attempts, 1s base delay, 10s cap, factor 2.
func WorkerRetryManager() *RetryManager {
	return &RetryManager{
		MaxRetries:    4,
		BaseDelay:     1 * time.Second,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}
