package droplog

import (
	"time"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/id"
)

// Entry represents an inbound event that was dropped without dispatch
// effect and captured for inspection or replay.
type Entry struct {
	ID         id.DropID            `json:"id"`
	ChannelKey string               `json:"channel_key"`
	EventKey   string               `json:"event_key,omitempty"`
	TenantID   string               `json:"tenant_id,omitempty"`
	Payload    []byte               `json:"payload"`
	Reason     correlate.DropReason `json:"reason"`
	Error      string               `json:"error"`
	DroppedAt  time.Time            `json:"dropped_at"`
	ReplayedAt *time.Time           `json:"replayed_at,omitempty"`
	CreatedAt  time.Time            `json:"created_at"`
}
