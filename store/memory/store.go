// Package memory provides a fully in-memory store backend. Intended
// for unit testing and development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/definition"
	"github.com/xraph/correlate/droplog"
	"github.com/xraph/correlate/guard"
	"github.com/xraph/correlate/id"
	"github.com/xraph/correlate/subscription"
)

// Ensure Store implements store.Store at compile time.
// We can't import store here (import cycle), so we verify each subsystem.
var (
	_ definition.Store       = (*Store)(nil)
	_ subscription.Store     = (*Store)(nil)
	_ guard.ReservationStore = (*Store)(nil)
	_ droplog.Store          = (*Store)(nil)
)

// Store is a fully in-memory implementation of store.Store.
// Safe for concurrent access.
type Store struct {
	mu sync.RWMutex

	definitions   map[string]*definition.Definition // key: eventKey + "\x1f" + tenantID
	subscriptions map[string]*subscription.Subscription
	reservations  map[string]struct{}
	drops         map[string]*droplog.Entry
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		definitions:   make(map[string]*definition.Definition),
		subscriptions: make(map[string]*subscription.Subscription),
		reservations:  make(map[string]struct{}),
		drops:         make(map[string]*droplog.Entry),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle — Migrate / Ping / Close
// ──────────────────────────────────────────────────

// Migrate is a no-op for the memory store.
func (m *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Definition Store
// ──────────────────────────────────────────────────

func defKey(eventKey, tenantID string) string {
	return eventKey + "\x1f" + tenantID
}

// IndexDefinition persists a definition under its (key, tenant)
// identity, replacing any previous definition with the same identity.
func (m *Store) IndexDefinition(_ context.Context, def *definition.Definition) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *def
	m.definitions[defKey(def.Key, def.TenantID)] = &cp
	return nil
}

// UnindexDeployment removes every definition belonging to the deployment.
func (m *Store) UnindexDeployment(_ context.Context, deploymentID id.DeploymentID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for key, def := range m.definitions {
		if def.DeploymentID.String() == deploymentID.String() {
			delete(m.definitions, key)
			count++
		}
	}
	return count, nil
}

// FindDefinition returns the definition with the exact (eventKey, tenantID)
// identity.
func (m *Store) FindDefinition(_ context.Context, eventKey, tenantID string) (*definition.Definition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	def, ok := m.definitions[defKey(eventKey, tenantID)]
	if !ok {
		return nil, correlate.ErrDefinitionNotFound
	}
	cp := *def
	return &cp, nil
}

// ──────────────────────────────────────────────────
// Subscription Store
// ──────────────────────────────────────────────────

// CreateSubscription persists a new subscription.
func (m *Store) CreateSubscription(_ context.Context, sub *subscription.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *sub
	m.subscriptions[sub.ID.String()] = &cp
	return nil
}

// DeleteSubscription removes one subscription by ID.
func (m *Store) DeleteSubscription(_ context.Context, subID id.SubscriptionID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := subID.String()
	if _, ok := m.subscriptions[key]; !ok {
		return correlate.ErrSubscriptionNotFound
	}
	delete(m.subscriptions, key)
	return nil
}

// DeleteByInstance removes every runtime subscription owned by the instance.
func (m *Store) DeleteByInstance(_ context.Context, instanceID id.InstanceID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for key, sub := range m.subscriptions {
		if sub.Kind == subscription.KindRuntime && sub.OwnerInstanceID.String() == instanceID.String() {
			delete(m.subscriptions, key)
			count++
		}
	}
	return count, nil
}

// DeleteByDeployment removes every start trigger belonging to the deployment.
func (m *Store) DeleteByDeployment(_ context.Context, deploymentID id.DeploymentID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for key, sub := range m.subscriptions {
		if sub.Kind == subscription.KindStart && sub.DeploymentID.String() == deploymentID.String() {
			delete(m.subscriptions, key)
			count++
		}
	}
	return count, nil
}

// FindSubscriptions returns every subscription for the exact
// (eventKey, tenantID) pair in creation order.
func (m *Store) FindSubscriptions(_ context.Context, eventKey, tenantID string) ([]*subscription.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*subscription.Subscription, 0)
	for _, sub := range m.subscriptions {
		if sub.EventKey != eventKey || sub.TenantID != tenantID {
			continue
		}
		cp := *sub
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, k int) bool {
		return result[i].CreatedAt.Before(result[k].CreatedAt)
	})

	return result, nil
}

// ──────────────────────────────────────────────────
// Reservation Store
// ──────────────────────────────────────────────────

// TryReserve atomically claims the key. Returns false if already held.
func (m *Store) TryReserve(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, held := m.reservations[key]; held {
		return false, nil
	}
	m.reservations[key] = struct{}{}
	return true, nil
}

// ReleaseReservation frees a held key. Releasing an unheld key is a no-op.
func (m *Store) ReleaseReservation(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.reservations, key)
	return nil
}

// ──────────────────────────────────────────────────
// Drop Log Store
// ──────────────────────────────────────────────────

// PushDrop adds a dropped event entry to the drop log.
func (m *Store) PushDrop(_ context.Context, entry *droplog.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.drops[entry.ID.String()] = entry
	return nil
}

// ListDrops returns drop log entries matching the given options.
func (m *Store) ListDrops(_ context.Context, opts droplog.ListOpts) ([]*droplog.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*droplog.Entry, 0, len(m.drops))
	for _, e := range m.drops {
		if opts.Channel != "" && e.ChannelKey != opts.Channel {
			continue
		}
		result = append(result, e)
	}

	sort.Slice(result, func(i, k int) bool {
		return result[i].DroppedAt.Before(result[k].DroppedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(result) {
			return nil, nil
		}
		result = result[opts.Offset:]
	}
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}

	return result, nil
}

// GetDrop retrieves a drop log entry by ID.
func (m *Store) GetDrop(_ context.Context, dropID id.DropID) (*droplog.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.drops[dropID.String()]
	if !ok {
		return nil, correlate.ErrDropNotFound
	}
	return e, nil
}

// MarkReplayed marks a drop log entry as replayed.
func (m *Store) MarkReplayed(_ context.Context, dropID id.DropID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.drops[dropID.String()]
	if !ok {
		return correlate.ErrDropNotFound
	}
	now := time.Now().UTC()
	e.ReplayedAt = &now
	return nil
}

// PurgeDrops removes entries with DroppedAt before the given time.
func (m *Store) PurgeDrops(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var count int64
	for key, e := range m.drops {
		if e.DroppedAt.Before(before) {
			delete(m.drops, key)
			count++
		}
	}
	return count, nil
}

// CountDrops returns the total number of entries in the drop log.
func (m *Store) CountDrops(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.drops)), nil
}
