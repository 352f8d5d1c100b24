package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/xraph/correlate"
	"github.com/xraph/correlate/droplog"
	"github.com/xraph/correlate/id"
)

// PushDrop adds a dropped event entry to the drop log.
func (s *Store) PushDrop(ctx context.Context, entry *droplog.Entry) error {
	eID := entry.ID.String()

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, dropKey(eID), dropToMap(entry))
	pipe.SAdd(ctx, dropIDsKey, eID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("correlate/redis: push drop: %w", err)
	}
	return nil
}

// ListDrops returns drop log entries matching the given options.
func (s *Store) ListDrops(ctx context.Context, opts droplog.ListOpts) ([]*droplog.Entry, error) {
	ids, err := s.client.SMembers(ctx, dropIDsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("correlate/redis: list drops: %w", err)
	}

	entries := make([]*droplog.Entry, 0, len(ids))
	for _, eID := range ids {
		vals, getErr := s.client.HGetAll(ctx, dropKey(eID)).Result()
		if getErr != nil || len(vals) == 0 {
			continue
		}
		e, convErr := mapToDrop(vals)
		if convErr != nil {
			continue
		}
		if opts.Channel != "" && e.ChannelKey != opts.Channel {
			continue
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, k int) bool {
		return entries[i].DroppedAt.Before(entries[k].DroppedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(entries) {
			return nil, nil
		}
		entries = entries[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(entries) {
		entries = entries[:opts.Limit]
	}
	return entries, nil
}

// GetDrop retrieves a drop log entry by ID.
func (s *Store) GetDrop(ctx context.Context, dropID id.DropID) (*droplog.Entry, error) {
	vals, err := s.client.HGetAll(ctx, dropKey(dropID.String())).Result()
	if err != nil {
		return nil, fmt.Errorf("correlate/redis: get drop: %w", err)
	}
	if len(vals) == 0 {
		return nil, correlate.ErrDropNotFound
	}
	return mapToDrop(vals)
}

// MarkReplayed marks a drop log entry as replayed.
func (s *Store) MarkReplayed(ctx context.Context, dropID id.DropID) error {
	key := dropKey(dropID.String())
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("correlate/redis: mark replayed exists: %w", err)
	}
	if exists == 0 {
		return correlate.ErrDropNotFound
	}

	if err := s.client.HSet(ctx, key,
		"replayed_at", time.Now().UTC().Format(time.RFC3339Nano),
	).Err(); err != nil {
		return fmt.Errorf("correlate/redis: mark replayed: %w", err)
	}
	return nil
}

// PurgeDrops removes entries with DroppedAt before the given time.
func (s *Store) PurgeDrops(ctx context.Context, before time.Time) (int64, error) {
	ids, err := s.client.SMembers(ctx, dropIDsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("correlate/redis: purge drops smembers: %w", err)
	}

	var purged int64
	for _, eID := range ids {
		key := dropKey(eID)
		droppedAtStr, getErr := s.client.HGet(ctx, key, "dropped_at").Result()
		if getErr != nil {
			if errors.Is(getErr, goredis.Nil) {
				continue
			}
			return purged, fmt.Errorf("correlate/redis: purge drops get: %w", getErr)
		}

		droppedAt, _ := time.Parse(time.RFC3339Nano, droppedAtStr) //nolint:errcheck // best-effort parse from trusted Redis data
		if droppedAt.Before(before) {
			pipe := s.client.TxPipeline()
			pipe.Del(ctx, key)
			pipe.SRem(ctx, dropIDsKey, eID)
			if _, pErr := pipe.Exec(ctx); pErr != nil {
				return purged, fmt.Errorf("correlate/redis: purge drops del: %w", pErr)
			}
			purged++
		}
	}
	return purged, nil
}

// CountDrops returns the total number of entries in the drop log.
func (s *Store) CountDrops(ctx context.Context) (int64, error) {
	count, err := s.client.SCard(ctx, dropIDsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("correlate/redis: count drops: %w", err)
	}
	return count, nil
}

// ── helpers ──

func dropToMap(e *droplog.Entry) map[string]interface{} {
	m := map[string]interface{}{
		"id":          e.ID.String(),
		"channel_key": e.ChannelKey,
		"event_key":   e.EventKey,
		"tenant_id":   e.TenantID,
		"payload":     string(e.Payload),
		"reason":      string(e.Reason),
		"error":       e.Error,
		"dropped_at":  e.DroppedAt.Format(time.RFC3339Nano),
		"created_at":  e.CreatedAt.Format(time.RFC3339Nano),
	}
	if e.ReplayedAt != nil {
		m["replayed_at"] = e.ReplayedAt.Format(time.RFC3339Nano)
	}
	return m
}

func mapToDrop(m map[string]string) (*droplog.Entry, error) {
	eID, err := id.ParseDropID(m["id"])
	if err != nil {
		return nil, fmt.Errorf("correlate/redis: parse drop id: %w", err)
	}
	droppedAt, _ := time.Parse(time.RFC3339Nano, m["dropped_at"]) //nolint:errcheck // best-effort parse from trusted Redis data
	createdAt, _ := time.Parse(time.RFC3339Nano, m["created_at"]) //nolint:errcheck // best-effort parse from trusted Redis data

	e := &droplog.Entry{
		ID:         eID,
		ChannelKey: m["channel_key"],
		EventKey:   m["event_key"],
		TenantID:   m["tenant_id"],
		Payload:    []byte(m["payload"]),
		Reason:     correlate.DropReason(m["reason"]),
		Error:      m["error"],
		DroppedAt:  droppedAt,
		CreatedAt:  createdAt,
	}

	if v := m["replayed_at"]; v != "" {
		t, _ := time.Parse(time.RFC3339Nano, v) //nolint:errcheck // best-effort parse from trusted Redis data
		e.ReplayedAt = &t
	}
	return e, nil
}
