package ext

import (
	"context"
	"log/slog"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/id"
	"github.com/xraph/correlate/subscription"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type eventReceivedEntry struct {
	name string
	hook EventReceived
}

type eventDroppedEntry struct {
	name string
	hook EventDropped
}

type instanceSignaledEntry struct {
	name string
	hook InstanceSignaled
}

type signalFailedEntry struct {
	name string
	hook SignalFailed
}

type instanceCreatedEntry struct {
	name string
	hook InstanceCreated
}

type instanceSkippedEntry struct {
	name string
	hook InstanceSkipped
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	eventReceived    []eventReceivedEntry
	eventDropped     []eventDroppedEntry
	instanceSignaled []instanceSignaledEntry
	signalFailed     []signalFailedEntry
	instanceCreated  []instanceCreatedEntry
	instanceSkipped  []instanceSkippedEntry
	shutdown         []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(EventReceived); ok {
		r.eventReceived = append(r.eventReceived, eventReceivedEntry{name, h})
	}
	if h, ok := e.(EventDropped); ok {
		r.eventDropped = append(r.eventDropped, eventDroppedEntry{name, h})
	}
	if h, ok := e.(InstanceSignaled); ok {
		r.instanceSignaled = append(r.instanceSignaled, instanceSignaledEntry{name, h})
	}
	if h, ok := e.(SignalFailed); ok {
		r.signalFailed = append(r.signalFailed, signalFailedEntry{name, h})
	}
	if h, ok := e.(InstanceCreated); ok {
		r.instanceCreated = append(r.instanceCreated, instanceCreatedEntry{name, h})
	}
	if h, ok := e.(InstanceSkipped); ok {
		r.instanceSkipped = append(r.instanceSkipped, instanceSkippedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// EmitEventReceived notifies all extensions that implement EventReceived.
func (r *Registry) EmitEventReceived(ctx context.Context, channelKey, eventKey, tenantID string) {
	for _, e := range r.eventReceived {
		if err := e.hook.OnEventReceived(ctx, channelKey, eventKey, tenantID); err != nil {
			r.logHookError("OnEventReceived", e.name, err)
		}
	}
}

// EmitEventDropped notifies all extensions that implement EventDropped.
func (r *Registry) EmitEventDropped(ctx context.Context, channelKey string, reason correlate.DropReason, dropErr error) {
	for _, e := range r.eventDropped {
		if err := e.hook.OnEventDropped(ctx, channelKey, reason, dropErr); err != nil {
			r.logHookError("OnEventDropped", e.name, err)
		}
	}
}

// EmitInstanceSignaled notifies all extensions that implement InstanceSignaled.
func (r *Registry) EmitInstanceSignaled(ctx context.Context, sub *subscription.Subscription, instanceID id.InstanceID) {
	for _, e := range r.instanceSignaled {
		if err := e.hook.OnInstanceSignaled(ctx, sub, instanceID); err != nil {
			r.logHookError("OnInstanceSignaled", e.name, err)
		}
	}
}

// EmitSignalFailed notifies all extensions that implement SignalFailed.
func (r *Registry) EmitSignalFailed(ctx context.Context, sub *subscription.Subscription, signalErr error) {
	for _, e := range r.signalFailed {
		if err := e.hook.OnSignalFailed(ctx, sub, signalErr); err != nil {
			r.logHookError("OnSignalFailed", e.name, err)
		}
	}
}

// EmitInstanceCreated notifies all extensions that implement InstanceCreated.
func (r *Registry) EmitInstanceCreated(ctx context.Context, trigger *subscription.Subscription, instanceID id.InstanceID, tenantID string) {
	for _, e := range r.instanceCreated {
		if err := e.hook.OnInstanceCreated(ctx, trigger, instanceID, tenantID); err != nil {
			r.logHookError("OnInstanceCreated", e.name, err)
		}
	}
}

// EmitInstanceSkipped notifies all extensions that implement InstanceSkipped.
func (r *Registry) EmitInstanceSkipped(ctx context.Context, trigger *subscription.Subscription, tenantID string) {
	for _, e := range r.instanceSkipped {
		if err := e.hook.OnInstanceSkipped(ctx, trigger, tenantID); err != nil {
			r.logHookError("OnInstanceSkipped", e.name, err)
		}
	}
}

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		e.hook.OnShutdown(ctx)
	}
}

// logHookError logs a hook failure. Hook errors never propagate to the
// dispatch path.
func (r *Registry) logHookError(hook, extension string, err error) {
	r.logger.Warn("extension hook failed",
		slog.String("hook", hook),
		slog.String("extension", extension),
		slog.String("error", err.Error()),
	)
}
