package correlate

import "errors"

var (
	// Store errors.
	ErrNoStore     = errors.New("correlate: no store configured")
	ErrNoEngine    = errors.New("correlate: no case engine configured")
	ErrStoreClosed = errors.New("correlate: store closed")

	// Channel errors.
	ErrChannelNotFound  = errors.New("correlate: channel not found")
	ErrDuplicateChannel = errors.New("correlate: channel key already registered")
	ErrChannelThrottled = errors.New("correlate: channel admission denied")

	// Resolution errors. These are non-fatal during dispatch: the event
	// is logged and dropped, never surfaced to the channel adapter.
	ErrDefinitionNotFound   = errors.New("correlate: no event definition for key and tenant")
	ErrEventKeyUnresolved   = errors.New("correlate: event key could not be resolved from payload")
	ErrMissingField         = errors.New("correlate: required correlation field absent")
	ErrFieldType            = errors.New("correlate: field value does not match declared type")
	ErrDeserialize          = errors.New("correlate: payload deserialization failed")
	ErrSubscriptionNotFound = errors.New("correlate: subscription not found")
	ErrDropNotFound         = errors.New("correlate: drop log entry not found")
)
