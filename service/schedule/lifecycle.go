package schedule

import (
	"context"
	"errors"
	"time"
)

// ErrTooLateToCancel rejects cancellation of an occurrence whose start is
// more than 24 hours in the past. Such occurrences can only be completed.
var ErrTooLateToCancel = errors.New("occurrence started more than 24 hours ago and can no longer be cancelled")

const cancelCutoff = 24 * time.Hour

// CheckCancellable enforces the 24-hour cancellation rule. Mutation
// handlers call this before writing a cancellation; the rejection must
// reach the caller as a domain error, never be coerced.
func CheckCancellable(occurrenceStart, now time.Time) error {
	if now.Sub(occurrenceStart) > cancelCutoff {
		return ErrTooLateToCancel
	}
	return nil
}

// RunStatusSweep expands the recent past so that elapsed pending
// appointments get promoted to done even when nobody is looking at the
// calendar. Promotion is idempotent, so overlapping sweeps are harmless.
// Returns the number of appointments promoted.
func (e *Engine) RunStatusSweep(ctx context.Context, businessID uint, lookback time.Duration) (int, error) {
	now := e.clock.Now()
	res, err := e.Expand(ctx, businessID, now.Add(-lookback), now)
	if err != nil {
		return 0, err
	}
	return res.Promoted, nil
}
