package correlate

import (
	"context"

	"github.com/xraph/correlate/id"
)

// CaseEngine is the collaborator contract for the case/process engine
// that owns instance execution. Correlate never parses case models or
// manages instance lifecycle itself; it only routes matched events to
// this interface.
//
// Calls are synchronous, transactional operations against the engine's
// persistent state. Apply timeouts at this boundary if the target
// platform needs them, never inside correlation or resolution logic.
type CaseEngine interface {
	// CreateInstance starts a new case instance for the given definition
	// key, bound to tenantID, with the extracted payload values as
	// initial variables.
	CreateInstance(ctx context.Context, caseDefinitionKey, tenantID string, initialVariables map[string]any) (id.InstanceID, error)

	// SignalInstance delivers an event occurrence to a running instance
	// that subscribed to it.
	SignalInstance(ctx context.Context, instanceID id.InstanceID, payload map[string]any) error

	// HasActiveInstance reports whether an active instance already exists
	// for the definition key, tenant, and correlation values. Used by the
	// instantiation guard for unique start triggers.
	HasActiveInstance(ctx context.Context, caseDefinitionKey, tenantID string, correlationValues map[string]any) (bool, error)
}
