// Package store defines the aggregate persistence interface. Each
// subsystem (definition, subscription, guard, droplog) defines its own
// store interface. The composite Store composes them all. Backends:
// Bun (Postgres), Redis, and Memory.
package store

import (
	"context"

	"github.com/xraph/correlate/definition"
	"github.com/xraph/correlate/droplog"
	"github.com/xraph/correlate/guard"
	"github.com/xraph/correlate/subscription"
)

// Store is the aggregate persistence interface.
// Each subsystem store is a composable interface; a single backend
// (bun, redis, memory) implements all of them.
type Store interface {
	definition.Store
	subscription.Store
	guard.ReservationStore
	droplog.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
