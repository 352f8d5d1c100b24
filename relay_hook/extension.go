package relayhook

import (
	"context"

	"github.com/xraph/relay"
	"github.com/xraph/relay/event"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/ext"
	"github.com/xraph/correlate/id"
	"github.com/xraph/correlate/subscription"
)

// Compile-time interface checks.
var (
	_ ext.Extension        = (*Extension)(nil)
	_ ext.EventReceived    = (*Extension)(nil)
	_ ext.EventDropped     = (*Extension)(nil)
	_ ext.InstanceSignaled = (*Extension)(nil)
	_ ext.SignalFailed     = (*Extension)(nil)
	_ ext.InstanceCreated  = (*Extension)(nil)
	_ ext.InstanceSkipped  = (*Extension)(nil)
)

// Extension bridges correlate lifecycle events to Relay for webhook
// delivery. Each lifecycle hook emits a typed event via [relay.Relay.Send].
type Extension struct {
	relay    *relay.Relay
	enabled  map[string]bool        // nil = all enabled
	payloads map[string]PayloadFunc // custom payload builders
}

// New creates an Extension that emits correlate lifecycle events
// through the provided Relay instance.
func New(r *relay.Relay, opts ...Option) *Extension {
	h := &Extension{relay: r}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Name implements ext.Extension.
func (h *Extension) Name() string { return "relay-hook" }

// ── Inbound event hooks ─────────────────────────────

// OnEventReceived implements ext.EventReceived.
func (h *Extension) OnEventReceived(ctx context.Context, channelKey, eventKey, tenantID string) error {
	return h.send(ctx, EventReceived, tenantID, &eventPayload{
		ChannelKey: channelKey,
		EventKey:   eventKey,
		TenantID:   tenantID,
	})
}

// OnEventDropped implements ext.EventDropped.
func (h *Extension) OnEventDropped(ctx context.Context, channelKey string, reason correlate.DropReason, dropErr error) error {
	p := &eventDroppedPayload{
		eventPayload: eventPayload{ChannelKey: channelKey},
		Reason:       string(reason),
	}
	if dropErr != nil {
		p.Error = dropErr.Error()
	}
	return h.send(ctx, EventDropped, "", p)
}

// ── Dispatch target hooks ───────────────────────────

// OnInstanceSignaled implements ext.InstanceSignaled.
func (h *Extension) OnInstanceSignaled(ctx context.Context, sub *subscription.Subscription, instanceID id.InstanceID) error {
	return h.send(ctx, EventInstanceSignaled, sub.TenantID, newInstancePayload(sub, instanceID.String(), sub.TenantID))
}

// OnSignalFailed implements ext.SignalFailed.
func (h *Extension) OnSignalFailed(ctx context.Context, sub *subscription.Subscription, signalErr error) error {
	return h.send(ctx, EventSignalFailed, sub.TenantID, &signalFailedPayload{
		instancePayload: *newInstancePayload(sub, sub.OwnerInstanceID.String(), sub.TenantID),
		Error:           signalErr.Error(),
	})
}

// OnInstanceCreated implements ext.InstanceCreated.
func (h *Extension) OnInstanceCreated(ctx context.Context, trigger *subscription.Subscription, instanceID id.InstanceID, tenantID string) error {
	return h.send(ctx, EventInstanceCreated, tenantID, newInstancePayload(trigger, instanceID.String(), tenantID))
}

// OnInstanceSkipped implements ext.InstanceSkipped.
func (h *Extension) OnInstanceSkipped(ctx context.Context, trigger *subscription.Subscription, tenantID string) error {
	return h.send(ctx, EventInstanceSkipped, tenantID, newInstancePayload(trigger, "", tenantID))
}

// ── Internal helpers ────────────────────────────────

// send emits an event through Relay if the event type is enabled.
func (h *Extension) send(ctx context.Context, eventType, tenantID string, defaultData any) error {
	if h.enabled != nil && !h.enabled[eventType] {
		return nil
	}

	data := defaultData
	if fn, ok := h.payloads[eventType]; ok {
		custom, err := fn(defaultData)
		if err != nil {
			return err
		}
		data = custom
	}

	return h.relay.Send(ctx, &event.Event{
		Type:     eventType,
		TenantID: tenantID,
		Data:     data,
	})
}

// ── Default payload types ───────────────────────────

type eventPayload struct {
	ChannelKey string `json:"channel_key"`
	EventKey   string `json:"event_key,omitempty"`
	TenantID   string `json:"tenant_id,omitempty"`
}

type eventDroppedPayload struct {
	eventPayload
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

type instancePayload struct {
	SubscriptionID    string `json:"subscription_id"`
	EventKey          string `json:"event_key"`
	CaseDefinitionKey string `json:"case_definition_key,omitempty"`
	InstanceID        string `json:"instance_id,omitempty"`
	TenantID          string `json:"tenant_id,omitempty"`
}

func newInstancePayload(sub *subscription.Subscription, instanceID, tenantID string) *instancePayload {
	return &instancePayload{
		SubscriptionID:    sub.ID.String(),
		EventKey:          sub.EventKey,
		CaseDefinitionKey: sub.CaseDefinitionKey,
		InstanceID:        instanceID,
		TenantID:          tenantID,
	}
}

type signalFailedPayload struct {
	instancePayload
	Error string `json:"error"`
}
