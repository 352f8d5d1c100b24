// Package observability provides a metrics extension for Correlate. The
// MetricsExtension implements lifecycle hooks to record system-wide
// counters for received events, drops, delivered and failed signals,
// created instances, and unique-instance skips.
//
// For per-dispatch tracing and metrics, see the middleware package:
// middleware.Tracing() and middleware.Metrics().
package observability
