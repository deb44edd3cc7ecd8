package pgdonations

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS donation_snapshots (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL,
  food_type TEXT NOT NULL DEFAULT '',
  temperature TEXT NOT NULL DEFAULT '',
  packaging TEXT NOT NULL DEFAULT '',
  fabrication_date DATE NULL,
  expiry_date DATE NULL,
  zone TEXT NOT NULL DEFAULT '',
  updated_at TIMESTAMPTZ NOT NULL,
  received_at TIMESTAMPTZ NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_donation_snapshots_status_updated ON donation_snapshots(status, updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_donation_snapshots_updated_id ON donation_snapshots(updated_at, id)`,
		`
CREATE TABLE IF NOT EXISTS donation_pickup_slots (
  donation_id TEXT NOT NULL REFERENCES donation_snapshots(id) ON DELETE CASCADE,
  position INT NOT NULL,
  pickup_date DATE NULL,
  start_time TIME NULL,
  end_time TIME NULL,
  notes TEXT NULL,
  PRIMARY KEY (donation_id, position)
)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
