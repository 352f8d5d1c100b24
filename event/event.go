package event

// Resolved is the transient, per-dispatch form of one inbound event
// after tenant resolution, definition lookup, and field extraction.
// It is created and discarded within a single dispatch call and never
// persisted.
type Resolved struct {
	// EventKey is the resolved event definition key.
	EventKey string

	// DispatchTenantID is the tenant the event is dispatched under,
	// determined solely by channel configuration and payload — never by
	// the resolved definition's tenant.
	DispatchTenantID string

	// DefinitionTenantID is the tenant under which the definition was
	// found. It may be NoTenant (default-tenant fallback) even when
	// DispatchTenantID is concrete.
	DefinitionTenantID string

	// Correlation holds the extracted correlation parameter values,
	// keyed by declared name.
	Correlation map[string]any

	// Payload holds the extracted payload field values, keyed by
	// declared name. Declared fields absent from the document are
	// omitted.
	Payload map[string]any
}
