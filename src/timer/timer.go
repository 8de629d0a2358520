package timer

import (
	"context"
	"log/slog"
	"time"
)

// Periodic calls fn every interval until ctx is cancelled. The timer is re-armed only
// after fn returned, so a slow call delays the next one instead of overlapping it.
func Periodic(ctx context.Context, interval time.Duration, fn func()) {
	t := time.NewTimer(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Debug("Periodic timer stopped", "reason", ctx.Err())
			return
		case <-t.C:
			fn()
			resetTimer(t, interval)
		}
	}
}

// Stops the timer and resets it.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
