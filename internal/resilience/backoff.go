package resilience

import (
	"context"
	"time"
)

// Sleeper abstracts the inter-attempt delay so retry behavior can be
// asserted in tests without real waiting.
type Sleeper interface {
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in
	// the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

// NewSleeper returns a Sleeper backed by a real timer.
func NewSleeper() Sleeper { return timerSleeper{} }

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ExponentialBackoff returns the delay before retrying after the given
// 0-indexed attempt: 1s, 2s, 4s, ...
func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<uint(attempt)) * time.Second
}
