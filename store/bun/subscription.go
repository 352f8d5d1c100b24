package bunstore

import (
	"context"
	"fmt"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/id"
	"github.com/xraph/correlate/subscription"
)

// CreateSubscription persists a new subscription.
func (s *Store) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	m, err := toSubscriptionModel(sub)
	if err != nil {
		return err
	}

	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("correlate/bun: create subscription: %w", err)
	}
	return nil
}

// DeleteSubscription removes one subscription by ID.
func (s *Store) DeleteSubscription(ctx context.Context, subID id.SubscriptionID) error {
	res, err := s.db.NewDelete().
		TableExpr("correlate_subscriptions").
		Where("id = ?", subID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("correlate/bun: delete subscription: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return correlate.ErrSubscriptionNotFound
	}
	return nil
}

// DeleteByInstance removes every runtime subscription owned by the instance.
func (s *Store) DeleteByInstance(ctx context.Context, instanceID id.InstanceID) (int64, error) {
	res, err := s.db.NewDelete().
		TableExpr("correlate_subscriptions").
		Where("kind = ?", string(subscription.KindRuntime)).
		Where("owner_instance_id = ?", instanceID.String()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("correlate/bun: delete by instance: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	return rows, nil
}

// DeleteByDeployment removes every start trigger belonging to the deployment.
func (s *Store) DeleteByDeployment(ctx context.Context, deploymentID id.DeploymentID) (int64, error) {
	res, err := s.db.NewDelete().
		TableExpr("correlate_subscriptions").
		Where("kind = ?", string(subscription.KindStart)).
		Where("deployment_id = ?", deploymentID.String()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("correlate/bun: delete by deployment: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	return rows, nil
}

// FindSubscriptions returns every subscription for the exact
// (eventKey, tenantID) pair in creation order.
func (s *Store) FindSubscriptions(ctx context.Context, eventKey, tenantID string) ([]*subscription.Subscription, error) {
	var models []subscriptionModel
	err := s.db.NewSelect().Model(&models).
		Where("event_key = ?", eventKey).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("correlate/bun: find subscriptions: %w", err)
	}

	subs := make([]*subscription.Subscription, 0, len(models))
	for i := range models {
		sub, convErr := fromSubscriptionModel(&models[i])
		if convErr != nil {
			return nil, fmt.Errorf("correlate/bun: find subscriptions convert: %w", convErr)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
