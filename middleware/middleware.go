// Package middleware provides composable middleware around event
// dispatch. Middleware wraps one delivery synchronously and can modify
// execution (recover from panics, log, add tracing and metrics).
package middleware

import (
	"context"

	"github.com/xraph/correlate"
)

// Delivery describes one inbound event moving through the dispatch
// pipeline. The engine fills resolution fields (EventKey, TenantID,
// drop state, outcome count) as the pipeline progresses, so middleware
// observing the delivery after next() sees the final state.
type Delivery struct {
	// ChannelKey is the ingress channel. Always set.
	ChannelKey string

	// Bytes is the raw payload size. Always set.
	Bytes int

	// EventKey and TenantID are filled once resolution succeeds.
	EventKey string
	TenantID string

	// Dropped and Reason are set when the event is dropped without
	// dispatch effect.
	Dropped bool
	Reason  correlate.DropReason

	// Targets is the number of dispatch target outcomes produced by
	// fan-out (signals, creations, unique skips, failures).
	Targets int
}

// Handler is the terminal function that executes the dispatch logic.
type Handler func(ctx context.Context) error

// Middleware wraps a Handler with cross-cutting logic. It receives the
// current context, the delivery being dispatched, and the next handler
// to call. Middleware MUST call next to continue the chain (unless
// short-circuiting on error).
type Middleware func(ctx context.Context, d *Delivery, next Handler) error

// Chain composes multiple middleware into a single Middleware.
// Middleware are applied right-to-left: the first middleware in the
// list is the outermost wrapper.
//
// Example: Chain(recover, tracing, logging) executes as:
//
//	recover → tracing → logging → handler
func Chain(mws ...Middleware) Middleware {
	return func(ctx context.Context, d *Delivery, next Handler) error {
		// Build the chain from the end backwards.
		h := next
		for i := len(mws) - 1; i >= 0; i-- {
			mw := mws[i]
			prev := h
			h = func(ctx context.Context) error {
				return mw(ctx, d, prev)
			}
		}
		return h(ctx)
	}
}
