// Package channel models inbound channel descriptors, the named
// ingress points events arrive through, and the registry that holds
// them. A channel carries a tenant-resolution strategy, an event-key
// strategy, and a deserializer reference. Strategies are tagged
// variants so resolution stays exhaustive and easy to test.
package channel

import (
	"fmt"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/event"
)

// TenantStrategyKind discriminates the tenant-resolution variants.
type TenantStrategyKind string

// Tenant-resolution variants.
const (
	// TenantFixed pins every event on the channel to one tenant.
	TenantFixed TenantStrategyKind = "fixed"
	// TenantDetect reads the tenant from a payload field path.
	TenantDetect TenantStrategyKind = "detect"
	// TenantNone dispatches under the default (no-tenant) scope.
	TenantNone TenantStrategyKind = "none"
)

// TenantStrategy is the tagged variant describing how the dispatch
// tenant is computed for events on a channel.
type TenantStrategy struct {
	Kind     TenantStrategyKind `json:"kind"`
	TenantID string             `json:"tenant_id,omitempty"` // Kind == TenantFixed
	Path     string             `json:"path,omitempty"`      // Kind == TenantDetect
}

// FixedTenant returns a strategy that always resolves to tenantID.
func FixedTenant(tenantID string) TenantStrategy {
	return TenantStrategy{Kind: TenantFixed, TenantID: tenantID}
}

// DetectTenant returns a strategy that evaluates the given payload path
// ("/tenantId" or "tenantId"). Absent or empty values degrade to
// NoTenant; detection never fails a dispatch.
func DetectTenant(path string) TenantStrategy {
	return TenantStrategy{Kind: TenantDetect, Path: path}
}

// NoTenantStrategy returns a strategy that always resolves to NoTenant.
func NoTenantStrategy() TenantStrategy {
	return TenantStrategy{Kind: TenantNone}
}

// EventKeyStrategyKind discriminates the event-key variants.
type EventKeyStrategyKind string

// Event-key variants.
const (
	// KeyFixed pins every event on the channel to one definition key.
	KeyFixed EventKeyStrategyKind = "fixed"
	// KeyFromField reads the definition key from a payload field.
	KeyFromField EventKeyStrategyKind = "field"
)

// EventKeyStrategy is the tagged variant describing how the event
// definition key is computed for events on a channel.
type EventKeyStrategy struct {
	Kind  EventKeyStrategyKind `json:"kind"`
	Key   string               `json:"key,omitempty"`   // Kind == KeyFixed
	Field string               `json:"field,omitempty"` // Kind == KeyFromField
}

// FixedEventKey returns a strategy that always resolves to key.
func FixedEventKey(key string) EventKeyStrategy {
	return EventKeyStrategy{Kind: KeyFixed, Key: key}
}

// EventKeyFromField returns a strategy that reads the event key from
// the named payload field.
func EventKeyFromField(field string) EventKeyStrategy {
	return EventKeyStrategy{Kind: KeyFromField, Field: field}
}

// Channel is a registered inbound channel descriptor. Immutable once
// registered; mutated only by explicit register/remove on the Registry.
type Channel struct {
	Key          string
	Tenant       TenantStrategy
	EventKey     EventKeyStrategy
	Deserializer event.Deserializer
}

// ResolveTenant computes the dispatch tenant for one deserialized
// document. Resolution happens exactly once per inbound event and the
// result is used unchanged for both definition fallback and downstream
// dispatch. It never fails: detection misses degrade to NoTenant.
func (c *Channel) ResolveTenant(doc event.Document) string {
	switch c.Tenant.Kind {
	case TenantFixed:
		return c.Tenant.TenantID
	case TenantDetect:
		if s, ok := doc.LookupString(c.Tenant.Path); ok {
			return s
		}
		return correlate.NoTenant
	default:
		return correlate.NoTenant
	}
}

// ResolveEventKey computes the event definition key for one
// deserialized document. A FromField strategy whose field is absent or
// empty wraps ErrEventKeyUnresolved.
func (c *Channel) ResolveEventKey(doc event.Document) (string, error) {
	switch c.EventKey.Kind {
	case KeyFixed:
		return c.EventKey.Key, nil
	case KeyFromField:
		if s, ok := doc.LookupString(c.EventKey.Field); ok {
			return s, nil
		}
		return "", fmt.Errorf("%w: channel %q field %q", correlate.ErrEventKeyUnresolved, c.Key, c.EventKey.Field)
	default:
		return "", fmt.Errorf("%w: channel %q has no event key strategy", correlate.ErrEventKeyUnresolved, c.Key)
	}
}
