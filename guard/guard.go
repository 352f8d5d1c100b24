// Package guard enforces at-most-one-active-instance semantics for
// unique start triggers: per (case definition, tenant, correlation
// key), concurrent dispatches must never both create an instance.
//
// The guard composes two collaborators: a ReservationStore providing
// an atomic per-key check-and-set for the creation race window, and an
// ActiveQuerier (the case engine) answering whether an instance is
// already active. Reservations only cover the race window — the guard
// does not track instance lifetime.
package guard

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Decision is the outcome of a reservation attempt.
type Decision string

// Reservation outcomes.
const (
	// Proceed — no active instance exists and the slot is reserved;
	// the caller creates the instance.
	Proceed Decision = "proceed"
	// AlreadyExists — an active instance (or a concurrent reservation)
	// holds the key; creation is skipped silently.
	AlreadyExists Decision = "already_exists"
)

// ReservationStore provides the atomic per-key primitive. TryReserve
// must be check-and-set: two concurrent calls for the identical key
// must never both return true.
type ReservationStore interface {
	// TryReserve atomically claims the key. Returns false if already held.
	TryReserve(ctx context.Context, key string) (bool, error)

	// ReleaseReservation frees a held key. Releasing an unheld key is a
	// no-op.
	ReleaseReservation(ctx context.Context, key string) error
}

// ActiveQuerier answers whether an active instance already exists.
// The case engine's query capability satisfies this.
type ActiveQuerier interface {
	HasActiveInstance(ctx context.Context, caseDefinitionKey, tenantID string, correlationValues map[string]any) (bool, error)
}

// Guard is the instantiation guard.
type Guard struct {
	store   ReservationStore
	querier ActiveQuerier
}

// New creates a Guard over the given reservation store and querier.
func New(store ReservationStore, querier ActiveQuerier) *Guard {
	return &Guard{store: store, querier: querier}
}

// TryReserve decides whether a start trigger may create an instance.
// With unique false it always proceeds, no check made. With unique
// true it atomically claims the reservation key, then consults the
// querier; if an instance is already active the reservation is
// released and AlreadyExists returned. Uniqueness is scoped per
// tenant: the same correlation key under two tenants never collides.
func (g *Guard) TryReserve(ctx context.Context, caseDefinitionKey, tenantID string, correlation map[string]any, unique bool) (Decision, error) {
	if !unique {
		return Proceed, nil
	}

	key := Key(caseDefinitionKey, tenantID, correlation)

	held, err := g.store.TryReserve(ctx, key)
	if err != nil {
		return "", fmt.Errorf("guard: reserve %q: %w", key, err)
	}
	if !held {
		return AlreadyExists, nil
	}

	exists, err := g.querier.HasActiveInstance(ctx, caseDefinitionKey, tenantID, correlation)
	if err != nil {
		_ = g.store.ReleaseReservation(ctx, key)
		return "", fmt.Errorf("guard: query active instances: %w", err)
	}
	if exists {
		_ = g.store.ReleaseReservation(ctx, key)
		return AlreadyExists, nil
	}

	return Proceed, nil
}

// Release frees the reservation for the key. The dispatcher calls this
// once the created instance is queryable as active (or creation
// failed); from then on the querier alone answers uniqueness.
func (g *Guard) Release(ctx context.Context, caseDefinitionKey, tenantID string, correlation map[string]any) error {
	return g.store.ReleaseReservation(ctx, Key(caseDefinitionKey, tenantID, correlation))
}

// Key builds the canonical reservation key for (case definition,
// tenant, correlation values): sorted name=value pairs so map order
// never changes the key.
func Key(caseDefinitionKey, tenantID string, correlation map[string]any) string {
	names := make([]string, 0, len(correlation))
	for name := range correlation {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(caseDefinitionKey)
	b.WriteByte(0x1f)
	b.WriteString(tenantID)
	for _, name := range names {
		b.WriteByte(0x1f)
		fmt.Fprintf(&b, "%s=%v", name, correlation[name])
	}
	return b.String()
}
