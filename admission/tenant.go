package admission

import (
	"fmt"

	"golang.org/x/time/rate"
)

// TenantConfig defines rate limits and concurrency for a specific tenant
// on a specific channel. This lets a noisy tenant on a shared channel be
// throttled without affecting the others.
type TenantConfig struct {
	// ChannelKey is the channel this config applies to.
	ChannelKey string

	// TenantID is the tenant identifier resolved from the inbound
	// event.
	TenantID string

	// RateLimit is the sustained events per second for this tenant.
	RateLimit float64

	// RateBurst is the burst size for the tenant's rate limiter.
	RateBurst int

	// MaxConcurrency limits simultaneous dispatches for this tenant on
	// this channel. Zero means no tenant-specific concurrency limit.
	MaxConcurrency int
}

// tenantState tracks runtime state for a single channel+tenant pair.
type tenantState struct {
	limiter        *rate.Limiter
	maxConcurrency int
	active         int
}

// tenantKey builds the map key for a channel+tenant pair.
func tenantKey(channelKey, tenantID string) string {
	return fmt.Sprintf("%s:%s", channelKey, tenantID)
}

// SetTenantConfig configures rate limits and concurrency for a specific
// tenant on a specific channel. Calling this multiple times for the same
// channel+tenant replaces the previous configuration.
func (m *Manager) SetTenantConfig(cfg TenantConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := tenantKey(cfg.ChannelKey, cfg.TenantID)
	existing := m.tenants[key]

	ts := &tenantState{
		maxConcurrency: cfg.MaxConcurrency,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		ts.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	// Preserve current active count if reconfiguring.
	if existing != nil {
		ts.active = existing.active
	}
	m.tenants[key] = ts
}

// TenantActiveCount returns the current number of in-flight dispatches
// for a channel+tenant pair.
func (m *Manager) TenantActiveCount(channelKey, tenantID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ts := m.tenants[tenantKey(channelKey, tenantID)]; ts != nil {
		return ts.active
	}
	return 0
}
