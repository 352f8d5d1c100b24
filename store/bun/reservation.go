package bunstore

import (
	"context"
	"fmt"
	"time"
)

// TryReserve atomically claims the key. The insert races on the primary
// key; ON CONFLICT DO NOTHING makes exactly one concurrent caller win.
func (s *Store) TryReserve(ctx context.Context, key string) (bool, error) {
	m := &reservationModel{Key: key, CreatedAt: time.Now().UTC()}
	res, err := s.db.NewInsert().Model(m).
		On("CONFLICT (key) DO NOTHING").
		Exec(ctx)
	if err != nil {
		if isDuplicateKey(err) {
			return false, nil
		}
		return false, fmt.Errorf("correlate/bun: try reserve: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	return rows > 0, nil
}

// ReleaseReservation frees a held key. Releasing an unheld key is a no-op.
func (s *Store) ReleaseReservation(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*reservationModel)(nil)).
		Where("key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("correlate/bun: release reservation: %w", err)
	}
	return nil
}
