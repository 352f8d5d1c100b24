package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for correlate tracing.
const tracerName = "github.com/xraph/correlate"

// Tracing returns middleware that wraps event dispatch in an
// OpenTelemetry span. If no TracerProvider is configured globally, the
// default noop tracer is used and this middleware becomes a
// pass-through with zero overhead.
//
// Span attributes include: correlate.channel, correlate.event_key,
// correlate.tenant, correlate.dropped, correlate.targets. Resolution
// fields are recorded after the handler returns, since they are only
// known then. On error, the span status is set to codes.Error.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided
// tracer. This variant allows injecting a specific TracerProvider for
// testing or when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, d *Delivery, next Handler) error {
		ctx, span := tracer.Start(ctx, "correlate.dispatch",
			trace.WithAttributes(
				attribute.String("correlate.channel", d.ChannelKey),
				attribute.Int("correlate.payload_bytes", d.Bytes),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)

		span.SetAttributes(
			attribute.String("correlate.event_key", d.EventKey),
			attribute.String("correlate.tenant", d.TenantID),
			attribute.Bool("correlate.dropped", d.Dropped),
			attribute.Int("correlate.targets", d.Targets),
		)
		if d.Dropped {
			span.SetAttributes(attribute.String("correlate.drop_reason", string(d.Reason)))
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
