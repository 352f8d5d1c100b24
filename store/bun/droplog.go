package bunstore

import (
	"context"
	"fmt"
	"time"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/droplog"
	"github.com/xraph/correlate/id"
)

// PushDrop adds a dropped event entry to the drop log.
func (s *Store) PushDrop(ctx context.Context, entry *droplog.Entry) error {
	m := toDropModel(entry)
	if _, err := s.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("correlate/bun: push drop: %w", err)
	}
	return nil
}

// ListDrops returns drop log entries matching the given options.
func (s *Store) ListDrops(ctx context.Context, opts droplog.ListOpts) ([]*droplog.Entry, error) {
	var models []dropEntryModel
	q := s.db.NewSelect().Model(&models)

	if opts.Channel != "" {
		q = q.Where("channel_key = ?", opts.Channel)
	}

	q = q.Order("dropped_at ASC")

	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("correlate/bun: list drops: %w", err)
	}

	entries := make([]*droplog.Entry, 0, len(models))
	for i := range models {
		e, convErr := fromDropModel(&models[i])
		if convErr != nil {
			return nil, fmt.Errorf("correlate/bun: list drops convert: %w", convErr)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// GetDrop retrieves a drop log entry by ID.
func (s *Store) GetDrop(ctx context.Context, dropID id.DropID) (*droplog.Entry, error) {
	m := new(dropEntryModel)
	err := s.db.NewSelect().Model(m).
		Where("id = ?", dropID.String()).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, correlate.ErrDropNotFound
		}
		return nil, fmt.Errorf("correlate/bun: get drop: %w", err)
	}
	return fromDropModel(m)
}

// MarkReplayed marks a drop log entry as replayed.
func (s *Store) MarkReplayed(ctx context.Context, dropID id.DropID) error {
	res, err := s.db.NewUpdate().
		TableExpr("correlate_drops").
		Set("replayed_at = NOW()").
		Where("id = ?", dropID.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("correlate/bun: mark replayed: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return correlate.ErrDropNotFound
	}
	return nil
}

// PurgeDrops removes entries with DroppedAt before the given time.
// Returns the number of entries removed.
func (s *Store) PurgeDrops(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.NewDelete().
		TableExpr("correlate_drops").
		Where("dropped_at < ?", before).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("correlate/bun: purge drops: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	return rows, nil
}

// CountDrops returns the total number of entries in the drop log.
func (s *Store) CountDrops(ctx context.Context) (int64, error) {
	count, err := s.db.NewSelect().
		TableExpr("correlate_drops").
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("correlate/bun: count drops: %w", err)
	}
	return int64(count), nil
}
