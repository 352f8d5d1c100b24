package definition

import (
	"context"
	"errors"
	"fmt"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/id"
)

// Index resolves event definitions with default-tenant fallback. It is
// a thin layer over a Store; safe for concurrent use to the extent the
// underlying store is.
type Index struct {
	store Store
}

// NewIndex creates an Index over the given store.
func NewIndex(store Store) *Index {
	return &Index{store: store}
}

// Resolve looks up the definition for (eventKey, tenantID). On a miss
// it falls back to (eventKey, NoTenant); an exact tenant match always
// wins over the default-tenant definition regardless of deployment
// order. Both missing yields ErrDefinitionNotFound.
func (ix *Index) Resolve(ctx context.Context, eventKey, tenantID string) (*Definition, error) {
	def, err := ix.store.FindDefinition(ctx, eventKey, tenantID)
	if err == nil {
		return def, nil
	}
	if !errors.Is(err, correlate.ErrDefinitionNotFound) {
		return nil, err
	}

	if tenantID != correlate.NoTenant {
		def, err = ix.store.FindDefinition(ctx, eventKey, correlate.NoTenant)
		if err == nil {
			return def, nil
		}
		if !errors.Is(err, correlate.ErrDefinitionNotFound) {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: key=%q tenant=%q", correlate.ErrDefinitionNotFound, eventKey, tenantID)
}

// Add indexes a definition, assigning an ID and timestamps if unset.
// Called by the deployment collaborator on deploy; safe to call
// concurrently with Resolve.
func (ix *Index) Add(ctx context.Context, def *Definition) error {
	if def.Key == "" {
		return fmt.Errorf("definition: index: empty event key")
	}
	if def.ID.IsNil() {
		def.ID = id.NewDefinitionID()
	}
	if def.CreatedAt.IsZero() {
		def.Entity = correlate.NewEntity()
	}
	return ix.store.IndexDefinition(ctx, def)
}

// RemoveDeployment unindexes every definition of the deployment.
// Called by the deployment collaborator on delete.
func (ix *Index) RemoveDeployment(ctx context.Context, deploymentID id.DeploymentID) (int64, error) {
	return ix.store.UnindexDeployment(ctx, deploymentID)
}
