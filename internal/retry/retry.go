// Package retry provides a minimal retry-once helper for idempotent remote reads.
package retry

import (
	"context"
	"time"
)

// DefaultBackoff is the pause before the single retry attempt.
const DefaultBackoff = 200 * time.Millisecond

// Once runs fn and retries it a single time after backoff if it fails.
// Context cancellation aborts the wait and returns the first error.
func Once(ctx context.Context, backoff time.Duration, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return err
	case <-time.After(backoff):
	}

	return fn()
}
