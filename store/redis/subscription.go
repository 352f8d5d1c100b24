package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/id"
	"github.com/xraph/correlate/subscription"
)

// CreateSubscription persists a new subscription and indexes it under
// its (eventKey, tenantID) pair.
func (s *Store) CreateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	m, err := subscriptionToMap(sub)
	if err != nil {
		return err
	}

	sID := sub.ID.String()
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, subKey(sID), m)
	pipe.SAdd(ctx, subIDsKey, sID)
	pipe.SAdd(ctx, subIndexKey(sub.EventKey, sub.TenantID), sID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("correlate/redis: create subscription: %w", err)
	}
	return nil
}

// DeleteSubscription removes one subscription by ID.
func (s *Store) DeleteSubscription(ctx context.Context, subID id.SubscriptionID) error {
	sID := subID.String()
	vals, err := s.client.HGetAll(ctx, subKey(sID)).Result()
	if err != nil {
		return fmt.Errorf("correlate/redis: delete subscription get: %w", err)
	}
	if len(vals) == 0 {
		return correlate.ErrSubscriptionNotFound
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, subKey(sID))
	pipe.SRem(ctx, subIDsKey, sID)
	pipe.SRem(ctx, subIndexKey(vals["event_key"], vals["tenant_id"]), sID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("correlate/redis: delete subscription: %w", err)
	}
	return nil
}

// DeleteByInstance removes every runtime subscription owned by the instance.
func (s *Store) DeleteByInstance(ctx context.Context, instanceID id.InstanceID) (int64, error) {
	return s.deleteWhere(ctx, func(vals map[string]string) bool {
		return vals["kind"] == string(subscription.KindRuntime) &&
			vals["owner_instance_id"] == instanceID.String()
	})
}

// DeleteByDeployment removes every start trigger belonging to the deployment.
func (s *Store) DeleteByDeployment(ctx context.Context, deploymentID id.DeploymentID) (int64, error) {
	return s.deleteWhere(ctx, func(vals map[string]string) bool {
		return vals["kind"] == string(subscription.KindStart) &&
			vals["deployment_id"] == deploymentID.String()
	})
}

// deleteWhere scans all subscriptions and removes those matching the
// predicate. Returns the number removed.
func (s *Store) deleteWhere(ctx context.Context, match func(map[string]string) bool) (int64, error) {
	ids, err := s.client.SMembers(ctx, subIDsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("correlate/redis: delete subscriptions smembers: %w", err)
	}

	var removed int64
	for _, sID := range ids {
		vals, getErr := s.client.HGetAll(ctx, subKey(sID)).Result()
		if getErr != nil || len(vals) == 0 {
			continue
		}
		if !match(vals) {
			continue
		}
		pipe := s.client.TxPipeline()
		pipe.Del(ctx, subKey(sID))
		pipe.SRem(ctx, subIDsKey, sID)
		pipe.SRem(ctx, subIndexKey(vals["event_key"], vals["tenant_id"]), sID)
		if _, pErr := pipe.Exec(ctx); pErr != nil {
			return removed, fmt.Errorf("correlate/redis: delete subscriptions del: %w", pErr)
		}
		removed++
	}
	return removed, nil
}

// FindSubscriptions returns every subscription for the exact
// (eventKey, tenantID) pair in creation order.
func (s *Store) FindSubscriptions(ctx context.Context, eventKey, tenantID string) ([]*subscription.Subscription, error) {
	ids, err := s.client.SMembers(ctx, subIndexKey(eventKey, tenantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("correlate/redis: find subscriptions: %w", err)
	}

	subs := make([]*subscription.Subscription, 0, len(ids))
	for _, sID := range ids {
		vals, getErr := s.client.HGetAll(ctx, subKey(sID)).Result()
		if getErr != nil || len(vals) == 0 {
			continue
		}
		sub, convErr := mapToSubscription(vals)
		if convErr != nil {
			continue
		}
		subs = append(subs, sub)
	}

	sort.Slice(subs, func(i, k int) bool {
		return subs[i].CreatedAt.Before(subs[k].CreatedAt)
	})

	return subs, nil
}

// ── helpers ──

func subscriptionToMap(sub *subscription.Subscription) (map[string]interface{}, error) {
	corr, err := json.Marshal(sub.Correlation)
	if err != nil {
		return nil, fmt.Errorf("correlate/redis: marshal correlation: %w", err)
	}

	return map[string]interface{}{
		"id":                  sub.ID.String(),
		"kind":                string(sub.Kind),
		"event_key":           sub.EventKey,
		"tenant_id":           sub.TenantID,
		"correlation":         string(corr),
		"owner_instance_id":   sub.OwnerInstanceID.String(),
		"case_definition_key": sub.CaseDefinitionKey,
		"deployment_id":       sub.DeploymentID.String(),
		"unique":              strconv.FormatBool(sub.Unique),
		"created_at":          sub.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":          sub.UpdatedAt.Format(time.RFC3339Nano),
	}, nil
}

func mapToSubscription(m map[string]string) (*subscription.Subscription, error) {
	subID, err := id.ParseSubscriptionID(m["id"])
	if err != nil {
		return nil, fmt.Errorf("correlate/redis: parse subscription id: %w", err)
	}
	ownerID, _ := id.ParseInstanceID(m["owner_instance_id"])       //nolint:errcheck // best-effort parse from trusted Redis data
	depID, _ := id.ParseDeploymentID(m["deployment_id"])           //nolint:errcheck // best-effort parse from trusted Redis data
	unique, _ := strconv.ParseBool(m["unique"])                    //nolint:errcheck // best-effort parse from trusted Redis data
	createdAt, _ := time.Parse(time.RFC3339Nano, m["created_at"])  //nolint:errcheck // best-effort parse from trusted Redis data
	updatedAt, _ := time.Parse(time.RFC3339Nano, m["updated_at"])  //nolint:errcheck // best-effort parse from trusted Redis data

	var corr map[string]any
	if v := m["correlation"]; v != "" && v != "null" {
		if err := json.Unmarshal([]byte(v), &corr); err != nil {
			return nil, fmt.Errorf("correlate/redis: unmarshal correlation: %w", err)
		}
	}

	return &subscription.Subscription{
		Entity:            correlate.Entity{CreatedAt: createdAt, UpdatedAt: updatedAt},
		ID:                subID,
		Kind:              subscription.Kind(m["kind"]),
		EventKey:          m["event_key"],
		TenantID:          m["tenant_id"],
		Correlation:       corr,
		OwnerInstanceID:   ownerID,
		CaseDefinitionKey: m["case_definition_key"],
		DeploymentID:      depID,
		Unique:            unique,
	}, nil
}
