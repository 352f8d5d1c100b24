package bunstore

import (
	"context"
	"fmt"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/definition"
	"github.com/xraph/correlate/id"
)

// IndexDefinition persists a definition under its (key, tenant) identity.
// An upsert on the composite primary key implements replace-on-redeploy.
func (s *Store) IndexDefinition(ctx context.Context, def *definition.Definition) error {
	m, err := toDefinitionModel(def)
	if err != nil {
		return err
	}

	_, err = s.db.NewInsert().Model(m).
		On("CONFLICT (key, tenant_id) DO UPDATE").
		Set("id = EXCLUDED.id").
		Set("deployment_id = EXCLUDED.deployment_id").
		Set("correlation = EXCLUDED.correlation").
		Set("payload_fields = EXCLUDED.payload_fields").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("correlate/bun: index definition: %w", err)
	}
	return nil
}

// UnindexDeployment removes every definition belonging to the deployment.
func (s *Store) UnindexDeployment(ctx context.Context, deploymentID id.DeploymentID) (int64, error) {
	res, err := s.db.NewDelete().
		TableExpr("correlate_definitions").
		Where("deployment_id = ?", deploymentID.String()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("correlate/bun: unindex deployment: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	return rows, nil
}

// FindDefinition returns the definition with the exact (eventKey, tenantID)
// identity.
func (s *Store) FindDefinition(ctx context.Context, eventKey, tenantID string) (*definition.Definition, error) {
	m := new(definitionModel)
	err := s.db.NewSelect().Model(m).
		Where("key = ?", eventKey).
		Where("tenant_id = ?", tenantID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, correlate.ErrDefinitionNotFound
		}
		return nil, fmt.Errorf("correlate/bun: find definition: %w", err)
	}
	return fromDefinitionModel(m)
}
