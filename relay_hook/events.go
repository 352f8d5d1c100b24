package relayhook

import (
	"context"

	"github.com/xraph/relay"
	"github.com/xraph/relay/catalog"
)

// Correlate lifecycle event types. Each constant maps to one ext
// lifecycle hook and is used as the event.Event.Type when sending via
// Relay.
const (
	EventReceived         = "correlate.event.received"
	EventDropped          = "correlate.event.dropped"
	EventInstanceSignaled = "correlate.instance.signaled"
	EventSignalFailed     = "correlate.instance.signal_failed"
	EventInstanceCreated  = "correlate.instance.created"
	EventInstanceSkipped  = "correlate.instance.skipped_unique"
)

// AllDefinitions returns webhook definitions for all correlate
// lifecycle event types. Pass these to relay.RegisterEventType to
// populate the catalog.
func AllDefinitions() []catalog.WebhookDefinition {
	return []catalog.WebhookDefinition{
		// ── Inbound event lifecycle ─────────────────────
		{
			Name:        EventReceived,
			Description: "Fired when an inbound event resolves its tenant and event key.",
			Group:       "events",
			Version:     "2025-01-01",
		},
		{
			Name:        EventDropped,
			Description: "Fired when an inbound event is dropped without dispatch effect.",
			Group:       "events",
			Version:     "2025-01-01",
		},
		// ── Instance lifecycle ──────────────────────────
		{
			Name:        EventInstanceSignaled,
			Description: "Fired after a matching runtime subscription's instance was signaled.",
			Group:       "instances",
			Version:     "2025-01-01",
		},
		{
			Name:        EventSignalFailed,
			Description: "Fired when signaling one runtime target fails.",
			Group:       "instances",
			Version:     "2025-01-01",
		},
		{
			Name:        EventInstanceCreated,
			Description: "Fired after a start trigger created a new case instance.",
			Group:       "instances",
			Version:     "2025-01-01",
		},
		{
			Name:        EventInstanceSkipped,
			Description: "Fired when a unique start trigger skipped creation for an active instance.",
			Group:       "instances",
			Version:     "2025-01-01",
		},
	}
}

// RegisterAll registers all correlate webhook event types in the Relay
// catalog. Call this once during application startup before sending
// events.
func RegisterAll(ctx context.Context, r *relay.Relay) error {
	for _, def := range AllDefinitions() {
		if _, err := r.RegisterEventType(ctx, def); err != nil {
			return err
		}
	}
	return nil
}
