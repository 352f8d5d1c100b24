package correlate

import "time"

// Entity carries the timestamps shared by all persisted correlate records.
// Embed it in subsystem entities (subscriptions, definitions, drop entries).
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEntity returns an Entity with both timestamps set to now (UTC).
func NewEntity() Entity {
	now := time.Now().UTC()
	return Entity{CreatedAt: now, UpdatedAt: now}
}
