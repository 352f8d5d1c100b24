// Package admission enforces per-channel and per-tenant rate limits and
// concurrency caps on inbound event dispatch.
//
// # Per-Channel Configuration
//
// Use [Config] to set per-channel rate limits and concurrency caps:
//
//	admission.Config{
//	    ChannelKey:     "orders",
//	    MaxConcurrency: 5,      // max 5 concurrent dispatches
//	    RateLimit:      10,     // max 10 events/s admitted
//	    RateBurst:      20,     // allow bursts up to 20
//	}
//
// Pass configs when building the engine:
//
//	engine.Build(c,
//	    engine.WithAdmission(
//	        admission.Config{ChannelKey: "orders", MaxConcurrency: 20},
//	        admission.Config{ChannelKey: "bulk-import", RateLimit: 5, RateBurst: 10},
//	    ),
//	)
//
// # Manager
//
// [Manager] enforces the limits at admission time, after the event's
// tenant has been resolved. It uses a token-bucket rate limiter
// (golang.org/x/time/rate) and an active-count gate for concurrency
// limits.
//
//	m := admission.NewManager(configs...)
//	if m.Acquire(channelKey, tenantID) {
//	    defer m.Release(channelKey, tenantID)
//	    // dispatch the event
//	}
//
// Channels without a [Config] have no limits. Per-tenant limits on
// shared channels are set with [Manager.SetTenantConfig].
package admission
