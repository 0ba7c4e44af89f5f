package resilience

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// NonRetryableError marks err as one Do should stop retrying immediately —
// for example a 4xx response, where the request itself is at fault and
// waiting will not change the outcome. Do unwraps it before returning, so
// callers see Cause rather than the wrapper.
type NonRetryableError struct {
	Cause error
}

func (e *NonRetryableError) Error() string { return e.Cause.Error() }
func (e *NonRetryableError) Unwrap() error { return e.Cause }

// Do retries fn with exponential backoff, honoring ctx cancellation between
// attempts. maxRetries of 0 means fn runs exactly once. A *ErrCircuitOpen or
// *NonRetryableError is never retried: the former because a breaker's
// rejection will not resolve by waiting a few milliseconds, the latter
// because fn has signaled the failure is not transient.
func Do(ctx context.Context, maxRetries int, baseBackoff time.Duration, logger *slog.Logger, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return lastErr
		}
		var openErr *ErrCircuitOpen
		if errors.As(err, &openErr) {
			return err
		}
		var notRetryable *NonRetryableError
		if errors.As(err, &notRetryable) {
			return notRetryable.Cause
		}

		if attempt < maxRetries {
			wait := baseBackoff * (1 << uint(attempt))
			if logger != nil {
				logger.WarnContext(ctx, "retrying call",
					"attempt", attempt+1,
					"max_retries", maxRetries,
					"backoff_ms", wait.Milliseconds(),
					"error", err)
			}
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(wait):
			}
		}
	}
	return lastErr
}
