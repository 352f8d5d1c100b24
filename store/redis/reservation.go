package redis

import (
	"context"
	"fmt"
	"time"
)

// reservationTTL bounds how long an orphaned reservation can block
// instance creation if a process dies between reserve and release.
const reservationTTL = 5 * time.Minute

// TryReserve atomically claims the key via SET NX. Returns false if the
// key is already held by a concurrent dispatch.
func (s *Store) TryReserve(ctx context.Context, key string) (bool, error) {
	held, err := s.client.SetNX(ctx, reservationKey(key), "1", reservationTTL).Result()
	if err != nil {
		return false, fmt.Errorf("correlate/redis: try reserve: %w", err)
	}
	return held, nil
}

// ReleaseReservation frees a held key. Releasing an unheld key is a no-op.
func (s *Store) ReleaseReservation(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, reservationKey(key)).Err(); err != nil {
		return fmt.Errorf("correlate/redis: release reservation: %w", err)
	}
	return nil
}
