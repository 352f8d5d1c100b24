package droplog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/backoff"
	"github.com/xraph/correlate/droplog"
	"github.com/xraph/correlate/id"
	"github.com/xraph/correlate/store/memory"
)

func TestService_Capture_BuildsEntry(t *testing.T) {
	s := memory.New()
	svc := droplog.NewService(s)
	ctx := context.Background()

	payload := []byte(`{"type":"order-paid","orderId":"o-17"}`)
	dropErr := errors.New("no event definition for key order-paid")

	if err := svc.Capture(ctx, "orders", "order-paid", "acme", payload, correlate.DropDefinitionNotFound, dropErr); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	entries, err := s.ListDrops(ctx, droplog.ListOpts{Limit: 10})
	if err != nil {
		t.Fatalf("ListDrops: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 drop entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.ChannelKey != "orders" {
		t.Errorf("ChannelKey = %q, want %q", entry.ChannelKey, "orders")
	}
	if entry.EventKey != "order-paid" {
		t.Errorf("EventKey = %q, want %q", entry.EventKey, "order-paid")
	}
	if entry.TenantID != "acme" {
		t.Errorf("TenantID = %q, want %q", entry.TenantID, "acme")
	}
	if string(entry.Payload) != string(payload) {
		t.Errorf("Payload = %q, want %q", entry.Payload, payload)
	}
	if entry.Reason != correlate.DropDefinitionNotFound {
		t.Errorf("Reason = %q, want %q", entry.Reason, correlate.DropDefinitionNotFound)
	}
	if entry.Error != "no event definition for key order-paid" {
		t.Errorf("Error = %q", entry.Error)
	}
	if entry.DroppedAt.IsZero() {
		t.Error("expected DroppedAt to be set")
	}
	if entry.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if entry.ReplayedAt != nil {
		t.Error("expected ReplayedAt to be nil before replay")
	}
}

func TestService_Capture_NilError(t *testing.T) {
	s := memory.New()
	svc := droplog.NewService(s)
	ctx := context.Background()

	if err := svc.Capture(ctx, "orders", "", "acme", nil, correlate.DropThrottled, nil); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	entries, err := s.ListDrops(ctx, droplog.ListOpts{})
	if err != nil {
		t.Fatalf("ListDrops: %v", err)
	}
	if entries[0].Error != "" {
		t.Errorf("Error = %q, want empty", entries[0].Error)
	}
}

func TestService_Capture_CountIncreases(t *testing.T) {
	s := memory.New()
	svc := droplog.NewService(s)
	ctx := context.Background()

	for i := range 3 {
		if err := svc.Capture(ctx, "orders", "", "", nil, correlate.DropDeserialization, errors.New("bad json")); err != nil {
			t.Fatalf("Capture %d: %v", i, err)
		}
	}

	count, err := s.CountDrops(ctx)
	if err != nil {
		t.Fatalf("CountDrops: %v", err)
	}
	if count != 3 {
		t.Errorf("CountDrops = %d, want 3", count)
	}
}

func TestService_Replay_DispatchesAndMarks(t *testing.T) {
	s := memory.New()
	svc := droplog.NewService(s)
	ctx := context.Background()

	payload := []byte(`{"type":"order-paid"}`)
	if err := svc.Capture(ctx, "orders", "order-paid", "acme", payload, correlate.DropDefinitionNotFound, errors.New("not found")); err != nil {
		t.Fatalf("Capture: %v", err)
	}

	entries, err := s.ListDrops(ctx, droplog.ListOpts{Limit: 1})
	if err != nil {
		t.Fatalf("ListDrops: %v", err)
	}
	dropID := entries[0].ID

	var gotChannel string
	var gotPayload []byte
	err = svc.Replay(ctx, dropID, func(_ context.Context, channelKey string, payload []byte) error {
		gotChannel = channelKey
		gotPayload = payload
		return nil
	})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}

	if gotChannel != "orders" {
		t.Errorf("replayed channel = %q, want %q", gotChannel, "orders")
	}
	if string(gotPayload) != string(payload) {
		t.Errorf("replayed payload = %q, want %q", gotPayload, payload)
	}

	entry, err := s.GetDrop(ctx, dropID)
	if err != nil {
		t.Fatalf("GetDrop: %v", err)
	}
	if entry.ReplayedAt == nil {
		t.Error("expected ReplayedAt to be set after replay")
	}
}

func TestService_Replay_RetriesUntilSuccess(t *testing.T) {
	s := memory.New()
	svc := droplog.NewService(s)
	svc.SetReplayPolicy(3, backoff.NewConstant(time.Millisecond))
	ctx := context.Background()

	if err := svc.Capture(ctx, "orders", "", "", nil, correlate.DropMissingField, errors.New("missing orderId")); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	entries, _ := s.ListDrops(ctx, droplog.ListOpts{Limit: 1})
	dropID := entries[0].ID

	calls := 0
	err := svc.Replay(ctx, dropID, func(context.Context, string, []byte) error {
		calls++
		if calls < 3 {
			return errors.New("still failing")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Replay: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 attempts, got %d", calls)
	}
}

func TestService_Replay_ExhaustsAttempts(t *testing.T) {
	s := memory.New()
	svc := droplog.NewService(s)
	svc.SetReplayPolicy(2, backoff.NewConstant(time.Millisecond))
	ctx := context.Background()

	if err := svc.Capture(ctx, "orders", "", "", nil, correlate.DropDeserialization, errors.New("bad json")); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	entries, _ := s.ListDrops(ctx, droplog.ListOpts{Limit: 1})
	dropID := entries[0].ID

	calls := 0
	err := svc.Replay(ctx, dropID, func(context.Context, string, []byte) error {
		calls++
		return errors.New("permanent failure")
	})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if calls != 2 {
		t.Errorf("expected 2 attempts, got %d", calls)
	}

	// Entry must not be marked replayed.
	entry, getErr := s.GetDrop(ctx, dropID)
	if getErr != nil {
		t.Fatalf("GetDrop: %v", getErr)
	}
	if entry.ReplayedAt != nil {
		t.Error("expected ReplayedAt to stay nil after failed replay")
	}
}

func TestService_Replay_NotFoundReturnsError(t *testing.T) {
	s := memory.New()
	svc := droplog.NewService(s)
	ctx := context.Background()

	err := svc.Replay(ctx, id.NewDropID(), func(context.Context, string, []byte) error { return nil })
	if !errors.Is(err, correlate.ErrDropNotFound) {
		t.Fatalf("expected ErrDropNotFound, got %v", err)
	}
}
