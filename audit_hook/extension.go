package audithook

import (
	"context"
	"fmt"
	"log/slog"

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

// Recorder is the interface that audit backends must implement.
// Defined locally so the audit_hook package does not import any audit
// platform directly; callers inject the concrete backend at wiring
// time.
type Recorder interface {
	// Record persists a fully-formed audit event.
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	// What happened
	Action   string `json:"action"`
	Resource string `json:"resource"`
	Category string `json:"category"`

	// Details
	ResourceID string         `json:"resource_id,omitempty"`
	TenantID   string         `json:"tenant_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Severity constants.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Outcome constants.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Extension bridges correlate lifecycle events to an audit trail
// backend. Each lifecycle hook emits a structured audit event through
// the [Recorder].
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements ext.Extension.
func (e *Extension) Name() string { return "audit-hook" }

// ── Inbound event hooks ─────────────────────────────

// OnEventReceived implements ext.EventReceived.
func (e *Extension) OnEventReceived(ctx context.Context, channelKey, eventKey, tenantID string) error {
	return e.record(ctx, ActionEventReceived, SeverityInfo, OutcomeSuccess,
		ResourceEvent, eventKey, CategoryEvent, tenantID, nil,
		"channel", channelKey,
	)
}

// OnEventDropped implements ext.EventDropped. Drops are expected
// operational outcomes; they audit at warning severity, not critical.
func (e *Extension) OnEventDropped(ctx context.Context, channelKey string, reason correlate.DropReason, dropErr error) error {
	return e.record(ctx, ActionEventDropped, SeverityWarning, OutcomeFailure,
		ResourceEvent, channelKey, CategoryEvent, "", dropErr,
		"channel", channelKey,
		"reason", string(reason),
	)
}

// ── Dispatch target hooks ───────────────────────────

// OnInstanceSignaled implements ext.InstanceSignaled.
func (e *Extension) OnInstanceSignaled(ctx context.Context, sub *subscription.Subscription, instanceID id.InstanceID) error {
	return e.record(ctx, ActionInstanceSignaled, SeverityInfo, OutcomeSuccess,
		ResourceInstance, instanceID.String(), CategoryInstance, sub.TenantID, nil,
		"event_key", sub.EventKey,
		"subscription_id", sub.ID.String(),
	)
}

// OnSignalFailed implements ext.SignalFailed.
func (e *Extension) OnSignalFailed(ctx context.Context, sub *subscription.Subscription, signalErr error) error {
	return e.record(ctx, ActionSignalFailed, SeverityCritical, OutcomeFailure,
		ResourceInstance, sub.OwnerInstanceID.String(), CategoryInstance, sub.TenantID, signalErr,
		"event_key", sub.EventKey,
		"subscription_id", sub.ID.String(),
	)
}

// OnInstanceCreated implements ext.InstanceCreated.
func (e *Extension) OnInstanceCreated(ctx context.Context, trigger *subscription.Subscription, instanceID id.InstanceID, tenantID string) error {
	return e.record(ctx, ActionInstanceCreated, SeverityInfo, OutcomeSuccess,
		ResourceInstance, instanceID.String(), CategoryInstance, tenantID, nil,
		"event_key", trigger.EventKey,
		"case_definition_key", trigger.CaseDefinitionKey,
	)
}

// OnInstanceSkipped implements ext.InstanceSkipped.
func (e *Extension) OnInstanceSkipped(ctx context.Context, trigger *subscription.Subscription, tenantID string) error {
	return e.record(ctx, ActionInstanceSkipped, SeverityInfo, OutcomeSuccess,
		ResourceInstance, trigger.CaseDefinitionKey, CategoryInstance, tenantID, nil,
		"event_key", trigger.EventKey,
		"case_definition_key", trigger.CaseDefinitionKey,
	)
}

// ── Internal helpers ────────────────────────────────

// record builds and sends an audit event if the action is enabled.
// The kvPairs argument is a list of key-value pairs added to Metadata.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category, tenantID string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		TenantID:   tenantID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
