// Package ext defines the extension system for correlate.
//
// Extensions are notified of lifecycle events and can react to them —
// recording metrics, emitting webhooks, writing audit logs, etc.
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
//
// # Implementing an Extension
//
//	type MyExtension struct{}
//
//	func (e *MyExtension) Name() string { return "my-extension" }
//
//	// Opt in to specific hooks by implementing their interfaces.
//	func (e *MyExtension) OnInstanceCreated(ctx context.Context, trigger *subscription.Subscription, instanceID id.InstanceID, tenantID string) error {
//	    log.Printf("instance %s created in tenant %q", instanceID, tenantID)
//	    return nil
//	}
//
// # Hooks
//
//   - [EventReceived] — inbound event resolved, about to fan out
//   - [EventDropped] — inbound event dropped with no dispatch effect
//   - [InstanceSignaled] — a waiting instance received its signal
//   - [SignalFailed] — signaling one target failed (others unaffected)
//   - [InstanceCreated] — a start trigger created a new instance
//   - [InstanceSkipped] — a unique start trigger skipped creation
//   - [Shutdown] — the registry is shutting down gracefully
//
// The [Registry] fans out each event to all registered extensions that
// implement the corresponding hook interface. Hook errors are logged
// and never propagate into the dispatch path.
package ext
