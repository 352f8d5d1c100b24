package droplog

import (
	"context"
	"time"

	"github.com/xraph/correlate/id"
)

// ReplayFunc re-dispatches a captured payload on its original channel.
// The engine provides its receive path here; the indirection keeps the
// drop log independent of the dispatch loop.
type ReplayFunc func(ctx context.Context, channelKey string, payload []byte) error

// Replay re-dispatches a drop log entry through fn and marks the entry
// as replayed on success. Failing attempts are retried according to the
// service replay policy; the last error is returned once the attempt
// budget is exhausted.
func (s *Service) Replay(ctx context.Context, dropID id.DropID, fn ReplayFunc) error {
	entry, err := s.store.GetDrop(ctx, dropID)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, s.strategy.Delay(attempt-1)); err != nil {
				return err
			}
		}
		if lastErr = fn(ctx, entry.ChannelKey, entry.Payload); lastErr == nil {
			return s.store.MarkReplayed(ctx, dropID)
		}
	}
	return lastErr
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
