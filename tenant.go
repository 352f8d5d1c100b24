package correlate

// NoTenant is the sentinel tenant identifier for the default (global)
// tenant. Event definitions deployed without a tenant are indexed under
// NoTenant and act as the fallback for every concrete tenant.
const NoTenant = ""

// DropReason classifies why an inbound event was dropped without any
// dispatch effect. Drops are expected operational outcomes, not errors:
// unrelated channels may legitimately carry events no local definition
// claims.
type DropReason string

const (
	// DropDeserialization — the raw payload could not be deserialized.
	DropDeserialization DropReason = "deserialization"

	// DropEventKeyUnresolved — the channel's event-key strategy reads a
	// payload field that is absent or empty.
	DropEventKeyUnresolved DropReason = "event_key_unresolved"

	// DropDefinitionNotFound — no event definition matches the resolved
	// (event key, tenant) pair, even after default-tenant fallback.
	DropDefinitionNotFound DropReason = "definition_not_found"

	// DropMissingField — a declared correlation parameter is absent from
	// the payload.
	DropMissingField DropReason = "missing_field"

	// DropThrottled — admission control denied the delivery.
	DropThrottled DropReason = "throttled"
)
