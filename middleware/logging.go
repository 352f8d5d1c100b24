package middleware

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that logs delivery start and completion.
// Drops are logged at Warn with their reason; failed deliveries at
// Error.
func Logging(logger *slog.Logger) Middleware {
	return func(ctx context.Context, d *Delivery, next Handler) error {
		logger.Debug("event received",
			slog.String("channel", d.ChannelKey),
			slog.Int("bytes", d.Bytes),
		)

		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start)

		switch {
		case err != nil:
			logger.Error("dispatch failed",
				slog.String("channel", d.ChannelKey),
				slog.String("event_key", d.EventKey),
				slog.String("tenant", d.TenantID),
				slog.Duration("elapsed", elapsed),
				slog.String("error", err.Error()),
			)
		case d.Dropped:
			logger.Warn("event dropped",
				slog.String("channel", d.ChannelKey),
				slog.String("event_key", d.EventKey),
				slog.String("tenant", d.TenantID),
				slog.String("reason", string(d.Reason)),
			)
		default:
			logger.Info("event dispatched",
				slog.String("channel", d.ChannelKey),
				slog.String("event_key", d.EventKey),
				slog.String("tenant", d.TenantID),
				slog.Int("targets", d.Targets),
				slog.Duration("elapsed", elapsed),
			)
		}

		return err
	}
}
