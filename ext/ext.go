package ext

import (
	"context"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/id"
	"github.com/xraph/correlate/subscription"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Inbound event hooks
// ──────────────────────────────────────────────────

// EventReceived is called once per inbound event after tenant and
// event-key resolution succeed, before definition lookup and fan-out.
type EventReceived interface {
	OnEventReceived(ctx context.Context, channelKey, eventKey, tenantID string) error
}

// EventDropped is called when an inbound event is dropped without any
// dispatch effect (malformed payload, unresolved definition, missing
// correlation field, throttled).
type EventDropped interface {
	OnEventDropped(ctx context.Context, channelKey string, reason correlate.DropReason, dropErr error) error
}

// ──────────────────────────────────────────────────
// Dispatch target hooks
// ──────────────────────────────────────────────────

// InstanceSignaled is called after a matching runtime subscription's
// owner instance was signaled successfully.
type InstanceSignaled interface {
	OnInstanceSignaled(ctx context.Context, sub *subscription.Subscription, instanceID id.InstanceID) error
}

// SignalFailed is called when signaling one runtime target fails.
// Other targets are unaffected.
type SignalFailed interface {
	OnSignalFailed(ctx context.Context, sub *subscription.Subscription, signalErr error) error
}

// InstanceCreated is called after a start trigger created a new
// instance.
type InstanceCreated interface {
	OnInstanceCreated(ctx context.Context, trigger *subscription.Subscription, instanceID id.InstanceID, tenantID string) error
}

// InstanceSkipped is called when a unique start trigger found an
// active instance for the correlation key and skipped creation.
// Expected, not an error.
type InstanceSkipped interface {
	OnInstanceSkipped(ctx context.Context, trigger *subscription.Subscription, tenantID string) error
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// Shutdown is called when the registry is shutting down gracefully.
type Shutdown interface {
	OnShutdown(ctx context.Context)
}
