package audithook_test

import (
	"context"
	"errors"
	"testing"

	"github.com/xraph/correlate"
	audithook "github.com/xraph/correlate/audit_hook"
	"github.com/xraph/correlate/id"
	"github.com/xraph/correlate/subscription"
)

// captureRecorder collects every recorded audit event.
type captureRecorder struct {
	events []*audithook.AuditEvent
	err    error
}

func (r *captureRecorder) Record(_ context.Context, evt *audithook.AuditEvent) error {
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, evt)
	return nil
}

func runtimeSub() *subscription.Subscription {
	return &subscription.Subscription{
		ID:              id.NewSubscriptionID(),
		Kind:            subscription.KindRuntime,
		EventKey:        "orderEvent",
		TenantID:        "acme",
		OwnerInstanceID: id.NewInstanceID(),
	}
}

func startTrigger() *subscription.Subscription {
	return &subscription.Subscription{
		ID:                id.NewSubscriptionID(),
		Kind:              subscription.KindStart,
		EventKey:          "orderEvent",
		TenantID:          "acme",
		CaseDefinitionKey: "orderCase",
		Unique:            true,
	}
}

func TestExtension_OnEventReceived(t *testing.T) {
	rec := &captureRecorder{}
	e := audithook.New(rec)

	if err := e.OnEventReceived(context.Background(), "orders", "orderEvent", "acme"); err != nil {
		t.Fatalf("OnEventReceived: %v", err)
	}
	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	evt := rec.events[0]
	if evt.Action != audithook.ActionEventReceived {
		t.Errorf("Action = %q", evt.Action)
	}
	if evt.TenantID != "acme" {
		t.Errorf("TenantID = %q, want acme", evt.TenantID)
	}
	if evt.Metadata["channel"] != "orders" {
		t.Errorf("Metadata channel = %v", evt.Metadata["channel"])
	}
}

func TestExtension_OnEventDropped(t *testing.T) {
	rec := &captureRecorder{}
	e := audithook.New(rec)

	cause := errors.New("no definition")
	if err := e.OnEventDropped(context.Background(), "orders", correlate.DropDefinitionNotFound, cause); err != nil {
		t.Fatalf("OnEventDropped: %v", err)
	}
	evt := rec.events[0]
	if evt.Severity != audithook.SeverityWarning {
		t.Errorf("Severity = %q, want warning", evt.Severity)
	}
	if evt.Outcome != audithook.OutcomeFailure {
		t.Errorf("Outcome = %q, want failure", evt.Outcome)
	}
	if evt.Metadata["reason"] != string(correlate.DropDefinitionNotFound) {
		t.Errorf("Metadata reason = %v", evt.Metadata["reason"])
	}
	if evt.Reason != "no definition" {
		t.Errorf("Reason = %q", evt.Reason)
	}
}

func TestExtension_OnSignalFailed(t *testing.T) {
	rec := &captureRecorder{}
	e := audithook.New(rec)
	sub := runtimeSub()

	if err := e.OnSignalFailed(context.Background(), sub, errors.New("instance gone")); err != nil {
		t.Fatalf("OnSignalFailed: %v", err)
	}
	evt := rec.events[0]
	if evt.Severity != audithook.SeverityCritical {
		t.Errorf("Severity = %q, want critical", evt.Severity)
	}
	if evt.ResourceID != sub.OwnerInstanceID.String() {
		t.Errorf("ResourceID = %q, want owner instance", evt.ResourceID)
	}
}

func TestExtension_OnInstanceCreatedAndSkipped(t *testing.T) {
	rec := &captureRecorder{}
	e := audithook.New(rec)
	trigger := startTrigger()
	instID := id.NewInstanceID()

	if err := e.OnInstanceCreated(context.Background(), trigger, instID, "acme"); err != nil {
		t.Fatalf("OnInstanceCreated: %v", err)
	}
	if err := e.OnInstanceSkipped(context.Background(), trigger, "acme"); err != nil {
		t.Fatalf("OnInstanceSkipped: %v", err)
	}
	if len(rec.events) != 2 {
		t.Fatalf("events = %d, want 2", len(rec.events))
	}
	if rec.events[0].ResourceID != instID.String() {
		t.Errorf("created ResourceID = %q", rec.events[0].ResourceID)
	}
	if rec.events[1].Action != audithook.ActionInstanceSkipped {
		t.Errorf("second Action = %q", rec.events[1].Action)
	}
	if rec.events[1].Metadata["case_definition_key"] != "orderCase" {
		t.Errorf("skipped metadata = %v", rec.events[1].Metadata)
	}
}

func TestExtension_WithActionsFilters(t *testing.T) {
	rec := &captureRecorder{}
	e := audithook.New(rec, audithook.WithActions(audithook.ActionEventDropped))

	if err := e.OnEventReceived(context.Background(), "orders", "orderEvent", "acme"); err != nil {
		t.Fatalf("OnEventReceived: %v", err)
	}
	if err := e.OnEventDropped(context.Background(), "orders", correlate.DropMissingField, nil); err != nil {
		t.Fatalf("OnEventDropped: %v", err)
	}
	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want only the enabled action", len(rec.events))
	}
	if rec.events[0].Action != audithook.ActionEventDropped {
		t.Errorf("Action = %q", rec.events[0].Action)
	}
}

func TestExtension_RecorderErrorNeverPropagates(t *testing.T) {
	rec := &captureRecorder{err: errors.New("backend down")}
	e := audithook.New(rec)

	// Recorder failures are logged, never surfaced to the dispatch path.
	if err := e.OnEventReceived(context.Background(), "orders", "orderEvent", "acme"); err != nil {
		t.Fatalf("OnEventReceived returned %v, want nil", err)
	}
}

func TestExtension_RecorderFunc(t *testing.T) {
	var got *audithook.AuditEvent
	e := audithook.New(audithook.RecorderFunc(func(_ context.Context, evt *audithook.AuditEvent) error {
		got = evt
		return nil
	}))

	if err := e.OnInstanceSignaled(context.Background(), runtimeSub(), id.NewInstanceID()); err != nil {
		t.Fatalf("OnInstanceSignaled: %v", err)
	}
	if got == nil || got.Action != audithook.ActionInstanceSignaled {
		t.Fatalf("recorded = %+v", got)
	}
}

func TestAllActions(t *testing.T) {
	actions := audithook.AllActions()
	if len(actions) != 6 {
		t.Fatalf("AllActions = %d, want 6", len(actions))
	}
	seen := make(map[string]bool, len(actions))
	for _, a := range actions {
		if seen[a] {
			t.Errorf("duplicate action %q", a)
		}
		seen[a] = true
	}
}
