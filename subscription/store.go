package subscription

import (
	"context"

	"github.com/xraph/correlate/id"
)

// Store defines the persistence contract for subscriptions. Insertion
// and removal must be safe under concurrent reads from dispatch.
type Store interface {
	// CreateSubscription persists a new subscription.
	CreateSubscription(ctx context.Context, sub *Subscription) error

	// DeleteSubscription removes one subscription by ID.
	// Returns ErrSubscriptionNotFound if absent.
	DeleteSubscription(ctx context.Context, subID id.SubscriptionID) error

	// DeleteByInstance removes every runtime subscription owned by the
	// instance. Returns the number removed.
	DeleteByInstance(ctx context.Context, instanceID id.InstanceID) (int64, error)

	// DeleteByDeployment removes every start trigger belonging to the
	// deployment. Returns the number removed.
	DeleteByDeployment(ctx context.Context, deploymentID id.DeploymentID) (int64, error)

	// FindSubscriptions returns every subscription registered for the
	// exact (eventKey, tenantID) pair, of both kinds.
	FindSubscriptions(ctx context.Context, eventKey, tenantID string) ([]*Subscription, error)
}
