package droplog

import (
	"context"
	"time"

	"github.com/xraph/correlate/id"
)

// ListOpts controls pagination and filtering for drop log list queries.
type ListOpts struct {
	// Limit is the maximum number of entries to return. Zero means no limit.
	Limit int
	// Offset is the number of entries to skip.
	Offset int
	// Channel filters by channel key. Empty means all channels.
	Channel string
}

// Store defines the persistence contract for the drop log.
type Store interface {
	// PushDrop adds a dropped event entry to the drop log.
	PushDrop(ctx context.Context, entry *Entry) error

	// ListDrops returns drop log entries matching the given options.
	ListDrops(ctx context.Context, opts ListOpts) ([]*Entry, error)

	// GetDrop retrieves a drop log entry by ID.
	GetDrop(ctx context.Context, dropID id.DropID) (*Entry, error)

	// MarkReplayed marks a drop log entry as replayed. The actual
	// re-dispatch is handled at the service layer.
	MarkReplayed(ctx context.Context, dropID id.DropID) error

	// PurgeDrops removes entries with DroppedAt before the given time.
	// Returns the number of entries removed.
	PurgeDrops(ctx context.Context, before time.Time) (int64, error)

	// CountDrops returns the total number of entries in the drop log.
	CountDrops(ctx context.Context) (int64, error)
}
