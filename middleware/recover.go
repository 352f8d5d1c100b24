package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Recover returns middleware that recovers from panics in the dispatch
// chain. Panics are converted to errors and logged with a stack trace.
func Recover(logger *slog.Logger) Middleware {
	return func(ctx context.Context, d *Delivery, next Handler) (retErr error) {
		defer func() {
			if r := recover(); r != nil {
				stack := string(debug.Stack())
				logger.Error("dispatch panicked",
					slog.String("channel", d.ChannelKey),
					slog.String("event_key", d.EventKey),
					slog.Any("panic", r),
					slog.String("stack", stack),
				)
				retErr = fmt.Errorf("panic dispatching on channel %s: %v", d.ChannelKey, r)
			}
		}()
		return next(ctx)
	}
}
