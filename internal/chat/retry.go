package chat

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"time"
)

// IsRetryable reports whether err is a transient endpoint failure: rate
// limiting or a server error.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrCredentialInvalid) {
		return false
	}
	code := statusCode(err)
	return code == http.StatusTooManyRequests || code >= 500
}

// MaxRetriesLimit bounds Options.MaxRetries.
const MaxRetriesLimit = 10

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 5 {
		attempt = 5
	}
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
