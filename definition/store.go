package definition

import (
	"context"

	"github.com/xraph/correlate/id"
)

// Store defines the persistence contract for event definitions.
type Store interface {
	// IndexDefinition persists a definition under its (key, tenant)
	// identity. Indexing the same identity again replaces the previous
	// definition (redeployment).
	IndexDefinition(ctx context.Context, def *Definition) error

	// UnindexDeployment removes every definition belonging to the given
	// deployment. Returns the number of definitions removed.
	UnindexDeployment(ctx context.Context, deploymentID id.DeploymentID) (int64, error)

	// FindDefinition returns the definition with the exact (eventKey,
	// tenantID) identity, or ErrDefinitionNotFound.
	FindDefinition(ctx context.Context, eventKey, tenantID string) (*Definition, error)
}
