package audithook

// Audit event actions. Each constant corresponds to one ext lifecycle
// hook and becomes the Action field of the audit event.
const (
	ActionEventReceived   = "event.received"
	ActionEventDropped    = "event.dropped"
	ActionInstanceSignaled = "instance.signaled"
	ActionSignalFailed    = "instance.signal_failed"
	ActionInstanceCreated = "instance.created"
	ActionInstanceSkipped = "instance.skipped_unique"
)

// Audit event categories group related actions.
const (
	CategoryEvent    = "correlate.event"
	CategoryInstance = "correlate.instance"
)

// Resource types used as the Resource field in audit events.
const (
	ResourceEvent    = "inbound_event"
	ResourceInstance = "case_instance"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionEventReceived,
		ActionEventDropped,
		ActionInstanceSignaled,
		ActionSignalFailed,
		ActionInstanceCreated,
		ActionInstanceSkipped,
	}
}
