package capture

import (
	"context"
	"time"
)

// WaitReady polls the ready function at the given interval for up to
// attempts checks. It returns true as soon as ready reports true and
// false on timeout or context cancellation. Callers decide whether a
// timeout is fatal; the capture scheduler proceeds anyway.
func WaitReady(ctx context.Context, interval time.Duration, attempts int, ready func() bool) bool {
	if ready() {
		return true
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for i := 1; i < attempts; i++ {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if ready() {
				return true
			}
		}
	}
	return false
}
