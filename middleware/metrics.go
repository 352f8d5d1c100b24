package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for correlate metrics.
const meterName = "github.com/xraph/correlate"

// Metrics returns middleware that records per-delivery metrics using
// the global OTel MeterProvider. If no MeterProvider is configured,
// noop instruments are used and this middleware becomes a pass-through.
//
// Instruments:
//   - correlate.dispatch.duration (Float64Histogram): dispatch time in
//     seconds, with attributes: channel, status
//   - correlate.dispatch.deliveries (Int64Counter): total deliveries,
//     with attributes: channel, status
//
// status is "ok", "dropped", or "error".
func Metrics() Middleware {
	meter := otel.Meter(meterName)
	return MetricsWithMeter(meter)
}

// MetricsWithMeter returns metrics middleware using the provided meter.
// This variant allows injecting a specific MeterProvider for testing.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// Create instruments once at middleware construction time.
	// OTel instruments are safe for concurrent use. On error, the API
	// returns noop instruments so the middleware degrades gracefully.
	duration, dErr := meter.Float64Histogram(
		"correlate.dispatch.duration",
		metric.WithDescription("Duration of event dispatch in seconds"),
		metric.WithUnit("s"),
	)
	_ = dErr // noop fallback guaranteed by OTel API contract

	deliveries, cErr := meter.Int64Counter(
		"correlate.dispatch.deliveries",
		metric.WithDescription("Total number of event deliveries"),
		metric.WithUnit("{delivery}"),
	)
	_ = cErr // noop fallback guaranteed by OTel API contract

	return func(ctx context.Context, d *Delivery, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		switch {
		case err != nil:
			status = "error"
		case d.Dropped:
			status = "dropped"
		}

		attrs := metric.WithAttributes(
			attribute.String("channel", d.ChannelKey),
			attribute.String("status", status),
		)

		duration.Record(ctx, elapsed, attrs)
		deliveries.Add(ctx, 1, attrs)

		return err
	}
}
