// Package droplog captures inbound events that were dropped without any
// dispatch effect. It supports inspection, replay, and purging.
//
// When an event cannot be dispatched (malformed payload, unresolved
// event definition, missing correlation field, throttled channel) the
// engine calls [Service.Capture] to record it. The raw payload, drop
// reason, and error message are preserved for debugging.
//
// # Entry
//
// A [Entry] captures:
//   - ChannelKey / EventKey / TenantID: where the event arrived and, if
//     resolution got that far, what it resolved to
//   - Payload: the raw bytes as received
//   - Reason: the drop classification
//   - Error: the underlying error message, if any
//   - DroppedAt: when the drop occurred
//   - ReplayedAt: set when the entry is replayed (nil if not yet replayed)
//
// # Service
//
// [Service] wraps the drop log store with high-level operations:
//
//	svc := droplog.NewService(store)
//
//	// Capture is called automatically by the engine when drops are
//	// enabled in the configuration.
//	svc.Capture(ctx, "orders", "", "", raw, correlate.DropDeserialization, err)
//
//	// Access the underlying store for list/get/purge/count.
//	svc.DropStore().ListDrops(ctx, droplog.ListOpts{Limit: 50})
//	svc.DropStore().CountDrops(ctx)
//
// # Replay
//
// Replaying an entry feeds the original payload back through the
// engine's receive path on the original channel. Replay retries failing
// attempts with backoff and sets ReplayedAt on success:
//
//	err := svc.Replay(ctx, dropID, func(ctx context.Context, channelKey string, payload []byte) error {
//	    _, err := eng.EventReceived(ctx, channelKey, payload)
//	    return err
//	})
package droplog
