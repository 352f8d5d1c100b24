package channel

import (
	"fmt"
	"sync"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/event"
)

// Registry holds registered channel descriptors keyed by channel key.
// It is safe for concurrent use. Removing a channel does not remove
// definitions deployed against it.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]*Channel
}

// NewRegistry creates an empty channel registry.
func NewRegistry() *Registry {
	return &Registry{
		channels: make(map[string]*Channel),
	}
}

// Register adds a channel. Fails with ErrDuplicateChannel if the key is
// already present. A nil deserializer defaults to JSONDeserializer; an
// unset tenant strategy defaults to NoTenant.
func (r *Registry) Register(c *Channel) error {
	if c == nil || c.Key == "" {
		return fmt.Errorf("channel: register: empty channel key")
	}
	if c.EventKey.Kind == "" {
		return fmt.Errorf("channel: register %q: event key strategy required", c.Key)
	}
	if c.Tenant.Kind == "" {
		c.Tenant = NoTenantStrategy()
	}
	if c.Deserializer == nil {
		c.Deserializer = event.JSONDeserializer{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.channels[c.Key]; exists {
		return fmt.Errorf("%w: %q", correlate.ErrDuplicateChannel, c.Key)
	}
	r.channels[c.Key] = c
	return nil
}

// Remove deletes the channel with the given key. Removing an absent key
// is an idempotent no-op.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.channels, key)
}

// Lookup returns the channel for the given key, or ErrChannelNotFound.
func (r *Registry) Lookup(key string) (*Channel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.channels[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", correlate.ErrChannelNotFound, key)
	}
	return c, nil
}

// Keys returns all registered channel keys.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.channels))
	for k := range r.channels {
		keys = append(keys, k)
	}
	return keys
}
