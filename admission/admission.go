package admission

import (
	"sync"

	"golang.org/x/time/rate"
)

// Config defines per-channel behaviour such as rate limiting and
// concurrency.
type Config struct {
	// ChannelKey is the inbound channel this config applies to.
	ChannelKey string

	// MaxConcurrency limits how many events from this channel may be
	// dispatched simultaneously. Zero means no channel-specific limit.
	MaxConcurrency int

	// RateLimit is the maximum sustained events per second admitted
	// from this channel. Zero disables rate limiting.
	RateLimit float64

	// RateBurst is the burst size for the token-bucket rate limiter.
	// Defaults to 1 if RateLimit is set but RateBurst is zero.
	RateBurst int
}

// channelState tracks runtime state for a single channel.
type channelState struct {
	config  Config
	limiter *rate.Limiter
	active  int
}

// Manager controls per-channel and per-tenant rate limiting and
// concurrency at event admission time. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	channels map[string]*channelState
	tenants  map[string]*tenantState
}

// NewManager creates a Manager with the given channel configurations.
// Channels not listed here have no limits.
func NewManager(configs ...Config) *Manager {
	m := &Manager{
		channels: make(map[string]*channelState, len(configs)),
		tenants:  make(map[string]*tenantState),
	}
	for _, cfg := range configs {
		m.channels[cfg.ChannelKey] = newChannelState(cfg)
	}
	return m
}

func newChannelState(cfg Config) *channelState {
	cs := &channelState{config: cfg}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		cs.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return cs
}

// Acquire checks rate limits and concurrency for the given channel and
// tenant. If the event is admitted it increments the active counter and
// returns true. The caller MUST call Release when dispatch completes.
func (m *Manager) Acquire(channelKey, tenantID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Check channel-level constraints.
	cs := m.channels[channelKey]
	if cs != nil {
		if cs.limiter != nil && !cs.limiter.Allow() {
			return false
		}
		if cs.config.MaxConcurrency > 0 && cs.active >= cs.config.MaxConcurrency {
			return false
		}
	}

	// Check tenant-level constraints.
	if tenantID != "" {
		ts := m.tenants[tenantKey(channelKey, tenantID)]
		if ts != nil {
			if ts.limiter != nil && !ts.limiter.Allow() {
				return false
			}
			if ts.maxConcurrency > 0 && ts.active >= ts.maxConcurrency {
				return false
			}
			ts.active++
		}
	}

	// Increment channel active count.
	if cs != nil {
		cs.active++
	}

	return true
}

// Release decrements the active event count for the channel and tenant.
func (m *Manager) Release(channelKey, tenantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if cs := m.channels[channelKey]; cs != nil && cs.active > 0 {
		cs.active--
	}

	if tenantID != "" {
		if ts := m.tenants[tenantKey(channelKey, tenantID)]; ts != nil && ts.active > 0 {
			ts.active--
		}
	}
}

// SetChannelConfig dynamically updates (or creates) a channel
// configuration.
func (m *Manager) SetChannelConfig(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.channels[cfg.ChannelKey]
	cs := newChannelState(cfg)

	// Preserve current active count if reconfiguring.
	if existing != nil {
		cs.active = existing.active
	}
	m.channels[cfg.ChannelKey] = cs
}

// ActiveCount returns the current number of in-flight dispatches for a
// channel.
func (m *Manager) ActiveCount(channelKey string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cs := m.channels[channelKey]; cs != nil {
		return cs.active
	}
	return 0
}
