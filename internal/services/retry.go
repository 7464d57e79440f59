package services

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy retries an operation with exponential backoff. The same policy
// object serves every retried mutation; call sites differ only in parameters.
type RetryPolicy struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	PerAttemptTimeout time.Duration // 0 disables the per-attempt timeout
}

// DefaultRetryPolicy matches the write-retry schedule used across the image
// mutations: 3 attempts backed off 1s, 2s, 4s.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
}

// CommentRetryPolicy additionally bounds each attempt to 8 seconds.
var CommentRetryPolicy = RetryPolicy{
	MaxAttempts:       3,
	BaseDelay:         time.Second,
	PerAttemptTimeout: 8 * time.Second,
}

// Do runs op until it succeeds, attempts are exhausted, or ctx is cancelled.
// The delay before attempt n is BaseDelay * 2^(n-1). On exhaustion the last
// error is returned.
func (p RetryPolicy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if p.PerAttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.PerAttemptTimeout)
		}
		lastErr = op(attemptCtx)
		if cancel != nil {
			cancel()
		}
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		delay := p.BaseDelay << (attempt - 1)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		}
	}
	return lastErr
}
