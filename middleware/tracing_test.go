package middleware_test

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	mw "github.com/xraph/correlate/middleware"
)

func setupTestTracer() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return recorder, tp
}

func TestTracing_RecordsSpan(t *testing.T) {
	recorder, tp := setupTestTracer()
	m := mw.TracingWithTracer(tp.Tracer("test"))
	d := newTestDelivery()

	err := m(context.Background(), d, func(_ context.Context) error {
		d.EventKey = "orderCreated"
		d.TenantID = "tenantA"
		d.Targets = 3
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	span := spans[0]
	if span.Name() != "correlate.dispatch" {
		t.Errorf("span name = %q, want %q", span.Name(), "correlate.dispatch")
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("span status = %v, want Ok", span.Status().Code)
	}

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if got := attrs["correlate.event_key"].AsString(); got != "orderCreated" {
		t.Errorf("event_key attr = %q, want %q", got, "orderCreated")
	}
	if got := attrs["correlate.tenant"].AsString(); got != "tenantA" {
		t.Errorf("tenant attr = %q, want %q", got, "tenantA")
	}
	if got := attrs["correlate.targets"].AsInt64(); got != 3 {
		t.Errorf("targets attr = %d, want 3", got)
	}
}

func TestTracing_ErrorStatus(t *testing.T) {
	recorder, tp := setupTestTracer()
	m := mw.TracingWithTracer(tp.Tracer("test"))

	want := errors.New("dispatch blew up")
	err := m(context.Background(), newTestDelivery(), func(_ context.Context) error {
		return want
	})
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status().Code)
	}
}
