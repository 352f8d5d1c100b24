package subscription

import (
	"context"
	"fmt"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/id"
)

// Index provides the dispatch-side view over a subscription Store:
// runtime matching and start-trigger lookup, plus the lifecycle calls
// used by the case engine and the deployment collaborator.
type Index struct {
	store Store
}

// NewIndex creates an Index over the given store.
func NewIndex(store Store) *Index {
	return &Index{store: store}
}

// Add registers a subscription, assigning an ID and timestamps if
// unset. Runtime subscriptions must name an owner instance; start
// triggers must name a case definition key.
func (ix *Index) Add(ctx context.Context, sub *Subscription) error {
	if sub.EventKey == "" {
		return fmt.Errorf("subscription: add: empty event key")
	}
	switch sub.Kind {
	case KindRuntime:
		if sub.OwnerInstanceID.IsNil() {
			return fmt.Errorf("subscription: add: runtime subscription without owner instance")
		}
	case KindStart:
		if sub.CaseDefinitionKey == "" {
			return fmt.Errorf("subscription: add: start trigger without case definition key")
		}
	default:
		return fmt.Errorf("subscription: add: unknown kind %q", sub.Kind)
	}

	if sub.ID.IsNil() {
		sub.ID = id.NewSubscriptionID()
	}
	if sub.CreatedAt.IsZero() {
		sub.Entity = correlate.NewEntity()
	}
	return ix.store.CreateSubscription(ctx, sub)
}

// Remove deletes one subscription by ID.
func (ix *Index) Remove(ctx context.Context, subID id.SubscriptionID) error {
	return ix.store.DeleteSubscription(ctx, subID)
}

// RemoveInstance deletes every runtime subscription owned by the
// instance. Called by the case engine when an instance completes.
func (ix *Index) RemoveInstance(ctx context.Context, instanceID id.InstanceID) (int64, error) {
	return ix.store.DeleteByInstance(ctx, instanceID)
}

// RemoveDeployment deletes every start trigger of the deployment.
func (ix *Index) RemoveDeployment(ctx context.Context, deploymentID id.DeploymentID) (int64, error) {
	return ix.store.DeleteByDeployment(ctx, deploymentID)
}

// FindRuntimeMatches returns every runtime subscription for
// (eventKey, tenantID) whose required bindings are a subset of, and
// value-equal to, the given correlation values. All matches are
// returned — there is no first-match-wins shortcut.
func (ix *Index) FindRuntimeMatches(ctx context.Context, eventKey, tenantID string, correlation map[string]any) ([]*Subscription, error) {
	subs, err := ix.store.FindSubscriptions(ctx, eventKey, tenantID)
	if err != nil {
		return nil, err
	}

	var matches []*Subscription
	for _, s := range subs {
		if s.Kind == KindRuntime && s.Matches(correlation) {
			matches = append(matches, s)
		}
	}
	return matches, nil
}

// FindStartTriggers returns every start trigger for (eventKey,
// tenantID), independent of correlation values — uniqueness is checked
// later, by the instantiation guard.
func (ix *Index) FindStartTriggers(ctx context.Context, eventKey, tenantID string) ([]*Subscription, error) {
	subs, err := ix.store.FindSubscriptions(ctx, eventKey, tenantID)
	if err != nil {
		return nil, err
	}

	var triggers []*Subscription
	for _, s := range subs {
		if s.Kind == KindStart {
			triggers = append(triggers, s)
		}
	}
	return triggers, nil
}
