package droplog

import (
	"context"
	"time"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/backoff"
	"github.com/xraph/correlate/id"
)

// Service provides high-level drop log operations over a Store.
type Service struct {
	store    Store
	attempts int
	strategy backoff.Strategy
}

// NewService creates a drop log service with the default replay policy.
func NewService(store Store) *Service {
	return &Service{
		store:    store,
		attempts: correlate.DefaultConfig().ReplayAttempts,
		strategy: backoff.DefaultStrategy(),
	}
}

// SetReplayPolicy configures how many times Replay retries a failing
// re-dispatch and the backoff between attempts.
func (s *Service) SetReplayPolicy(attempts int, strategy backoff.Strategy) {
	if attempts > 0 {
		s.attempts = attempts
	}
	if strategy != nil {
		s.strategy = strategy
	}
}

// Capture builds a drop log Entry from a dropped inbound event and
// persists it. The error string is captured from the drop cause; dropErr
// may be nil for reasons that carry no error (throttling).
func (s *Service) Capture(ctx context.Context, channelKey, eventKey, tenantID string, payload []byte, reason correlate.DropReason, dropErr error) error {
	now := time.Now().UTC()
	entry := &Entry{
		ID:         id.NewDropID(),
		ChannelKey: channelKey,
		EventKey:   eventKey,
		TenantID:   tenantID,
		Payload:    payload,
		Reason:     reason,
		DroppedAt:  now,
		CreatedAt:  now,
	}
	if dropErr != nil {
		entry.Error = dropErr.Error()
	}
	return s.store.PushDrop(ctx, entry)
}

// DropStore returns the underlying store for direct access to List,
// Get, Purge, and Count operations.
func (s *Service) DropStore() Store {
	return s.store
}
