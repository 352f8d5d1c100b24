package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/definition"
	"github.com/xraph/correlate/id"
)

// IndexDefinition persists a definition under its (key, tenant) identity,
// replacing any previous definition with the same identity.
func (s *Store) IndexDefinition(ctx context.Context, def *definition.Definition) error {
	m, err := definitionToMap(def)
	if err != nil {
		return err
	}

	identity := def.Key + ":" + def.TenantID
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, defKey(def.Key, def.TenantID))
	pipe.HSet(ctx, defKey(def.Key, def.TenantID), m)
	pipe.SAdd(ctx, defIdentitiesKey, identity)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("correlate/redis: index definition: %w", err)
	}
	return nil
}

// UnindexDeployment removes every definition belonging to the deployment.
func (s *Store) UnindexDeployment(ctx context.Context, deploymentID id.DeploymentID) (int64, error) {
	identities, err := s.client.SMembers(ctx, defIdentitiesKey).Result()
	if err != nil {
		return 0, fmt.Errorf("correlate/redis: unindex deployment smembers: %w", err)
	}

	var removed int64
	for _, identity := range identities {
		key := keyPrefix + "def:" + identity
		depID, getErr := s.client.HGet(ctx, key, "deployment_id").Result()
		if getErr != nil {
			continue
		}
		if depID != deploymentID.String() {
			continue
		}
		pipe := s.client.TxPipeline()
		pipe.Del(ctx, key)
		pipe.SRem(ctx, defIdentitiesKey, identity)
		if _, pErr := pipe.Exec(ctx); pErr != nil {
			return removed, fmt.Errorf("correlate/redis: unindex deployment del: %w", pErr)
		}
		removed++
	}
	return removed, nil
}

// FindDefinition returns the definition with the exact (eventKey, tenantID)
// identity.
func (s *Store) FindDefinition(ctx context.Context, eventKey, tenantID string) (*definition.Definition, error) {
	vals, err := s.client.HGetAll(ctx, defKey(eventKey, tenantID)).Result()
	if err != nil {
		return nil, fmt.Errorf("correlate/redis: find definition: %w", err)
	}
	if len(vals) == 0 {
		return nil, correlate.ErrDefinitionNotFound
	}
	return mapToDefinition(vals)
}

// ── helpers ──

func definitionToMap(def *definition.Definition) (map[string]interface{}, error) {
	corr, err := json.Marshal(def.CorrelationParameters)
	if err != nil {
		return nil, fmt.Errorf("correlate/redis: marshal correlation parameters: %w", err)
	}
	payload, err := json.Marshal(def.PayloadFields)
	if err != nil {
		return nil, fmt.Errorf("correlate/redis: marshal payload fields: %w", err)
	}

	return map[string]interface{}{
		"id":             def.ID.String(),
		"key":            def.Key,
		"tenant_id":      def.TenantID,
		"deployment_id":  def.DeploymentID.String(),
		"correlation":    string(corr),
		"payload_fields": string(payload),
		"created_at":     def.CreatedAt.Format(time.RFC3339Nano),
		"updated_at":     def.UpdatedAt.Format(time.RFC3339Nano),
	}, nil
}

func mapToDefinition(m map[string]string) (*definition.Definition, error) {
	defID, err := id.ParseDefinitionID(m["id"])
	if err != nil {
		return nil, fmt.Errorf("correlate/redis: parse definition id: %w", err)
	}
	depID, _ := id.ParseDeploymentID(m["deployment_id"])           //nolint:errcheck // best-effort parse from trusted Redis data
	createdAt, _ := time.Parse(time.RFC3339Nano, m["created_at"])  //nolint:errcheck // best-effort parse from trusted Redis data
	updatedAt, _ := time.Parse(time.RFC3339Nano, m["updated_at"])  //nolint:errcheck // best-effort parse from trusted Redis data

	var corr, payload []definition.Parameter
	if v := m["correlation"]; v != "" {
		if err := json.Unmarshal([]byte(v), &corr); err != nil {
			return nil, fmt.Errorf("correlate/redis: unmarshal correlation parameters: %w", err)
		}
	}
	if v := m["payload_fields"]; v != "" {
		if err := json.Unmarshal([]byte(v), &payload); err != nil {
			return nil, fmt.Errorf("correlate/redis: unmarshal payload fields: %w", err)
		}
	}

	return &definition.Definition{
		Entity:                correlate.Entity{CreatedAt: createdAt, UpdatedAt: updatedAt},
		ID:                    defID,
		Key:                   m["key"],
		TenantID:              m["tenant_id"],
		DeploymentID:          depID,
		CorrelationParameters: corr,
		PayloadFields:         payload,
	}, nil
}
