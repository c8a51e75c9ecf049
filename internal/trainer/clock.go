package trainer

import (
	"context"
	"time"
)

// Clock performs the waits between elements. Every pending wait is revoked by
// cancelling ctx.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock waits on wall-clock time.
type RealClock struct{}

// Sleep blocks for d or until ctx is done, whichever comes first.
func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
