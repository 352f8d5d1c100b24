// Package middleware provides composable middleware for event
// dispatch: panic recovery, structured logging, OpenTelemetry tracing,
// and OpenTelemetry metrics. The engine installs a default chain of
// Recover → Tracing → Metrics → Logging; additional middleware can be
// appended via engine.WithMiddleware.
package middleware
