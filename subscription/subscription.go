// Package subscription holds the live registry of runtime event
// subscriptions (owned by running instances) and start triggers (owned
// by case definitions), and the matching rules that decide which of
// them an inbound event fires.
package subscription

import (
	"github.com/xraph/correlate"
	"github.com/xraph/correlate/id"
)

// Kind discriminates runtime subscriptions from start triggers.
type Kind string

// Subscription kinds.
const (
	// KindRuntime — a running instance waits on this event; a match
	// signals the owner.
	KindRuntime Kind = "runtime"
	// KindStart — a deployed case definition starts a new instance on
	// this event.
	KindStart Kind = "start"
)

// Subscription is one live registration awaiting a matching event.
//
// Runtime subscriptions are created and removed by the case engine as
// instances start and complete. Start triggers are created at
// deployment time and removed at deployment deletion.
type Subscription struct {
	correlate.Entity

	ID       id.SubscriptionID `json:"id"`
	Kind     Kind              `json:"kind"`
	EventKey string            `json:"event_key"`
	TenantID string            `json:"tenant_id,omitempty"`

	// Correlation holds the required correlation-value bindings
	// (name → value). A runtime subscription fires only when every
	// binding is value-equal to the resolved event's correlation
	// values; partial matches never fire.
	Correlation map[string]any `json:"correlation,omitempty"`

	// OwnerInstanceID is the signal target. Runtime subscriptions only.
	OwnerInstanceID id.InstanceID `json:"owner_instance_id,omitempty"`

	// CaseDefinitionKey names the definition to instantiate. Start
	// triggers only.
	CaseDefinitionKey string `json:"case_definition_key,omitempty"`

	// DeploymentID ties a start trigger to its deployment so deletion
	// removes it. Start triggers only.
	DeploymentID id.DeploymentID `json:"deployment_id,omitempty"`

	// Unique requests at-most-one-active-instance semantics per
	// (case definition, tenant, correlation key). Start triggers only.
	Unique bool `json:"unique,omitempty"`
}

// Matches reports whether every required binding of the subscription is
// present in, and value-equal to, the given correlation values. A
// subscription with no bindings matches any event with its key and
// tenant.
func (s *Subscription) Matches(correlation map[string]any) bool {
	for name, want := range s.Correlation {
		got, ok := correlation[name]
		if !ok || !valueEqual(want, got) {
			return false
		}
	}
	return true
}

// valueEqual compares binding values by value equality, normalizing
// numeric representations (int bindings against float64 extractions).
func valueEqual(a, b any) bool {
	if na, ok := normalizeNumber(a); ok {
		nb, ok := normalizeNumber(b)
		return ok && na == nb
	}
	return a == b
}

func normalizeNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
