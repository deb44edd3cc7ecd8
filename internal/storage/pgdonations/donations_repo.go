package pgdonations

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"

	"github.com/BearBump/FoodBridge/internal/models"
)

const (
	defaultListLimit = 100
	// MaxListLimit caps a single ListOpenDonations page.
	MaxListLimit = 1000
)

// UpsertDonation stores d unless a snapshot with a newer updated_at is
// already present. It reports whether d was written.
func (s *Storage) UpsertDonation(ctx context.Context, d *models.Donation) (bool, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	err = tx.QueryRow(ctx, `
INSERT INTO donation_snapshots (
  id, status, food_type, temperature, packaging,
  fabrication_date, expiry_date, zone, updated_at, received_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now())
ON CONFLICT (id) DO UPDATE SET
  status = EXCLUDED.status,
  food_type = EXCLUDED.food_type,
  temperature = EXCLUDED.temperature,
  packaging = EXCLUDED.packaging,
  fabrication_date = EXCLUDED.fabrication_date,
  expiry_date = EXCLUDED.expiry_date,
  zone = EXCLUDED.zone,
  updated_at = EXCLUDED.updated_at,
  received_at = now()
WHERE donation_snapshots.updated_at <= EXCLUDED.updated_at
RETURNING id
`, d.ID, d.Status, string(d.FoodType), string(d.Temperature), string(d.Packaging),
		dateParam(d.FabricationDate), dateParam(d.ExpiryDate), d.Zone, d.UpdatedAt.UTC()).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "upsert donation")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM donation_pickup_slots WHERE donation_id = $1`, d.ID); err != nil {
		return false, errors.Wrap(err, "delete pickup slots")
	}
	for i, slot := range d.PickupSlots {
		_, err := tx.Exec(ctx, `
INSERT INTO donation_pickup_slots (donation_id, position, pickup_date, start_time, end_time, notes)
VALUES ($1,$2,$3,$4,$5,$6)
`, d.ID, i, dateParam(slot.PickupDate), timeParam(slot.StartTime), timeParam(slot.EndTime), slot.Notes)
		if err != nil {
			return false, errors.Wrap(err, "insert pickup slot")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, errors.Wrap(err, "commit tx")
	}
	return true, nil
}

// GetDonation returns nil, nil when no snapshot exists.
func (s *Storage) GetDonation(ctx context.Context, id string) (*models.Donation, error) {
	rows, err := s.db.Query(ctx, selectSnapshots+` WHERE id = $1`, id)
	if err != nil {
		return nil, errors.Wrap(err, "select donation")
	}
	out, err := s.collect(ctx, rows)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// ListOpenDonations returns up to limit snapshots whose status is not in
// terminal, ordered by (updated_at, id) and starting strictly after the
// cursor when one is given. Limits above MaxListLimit are clamped.
func (s *Storage) ListOpenDonations(ctx context.Context, terminal []string, after *models.DonationCursor, limit int) ([]*models.Donation, error) {
	limit = pageLimit(limit)
	if terminal == nil {
		terminal = []string{}
	}
	var afterAt *time.Time
	var afterID string
	if after != nil {
		at := after.UpdatedAt.UTC()
		afterAt, afterID = &at, after.ID
	}
	rows, err := s.db.Query(ctx, selectSnapshots+`
WHERE NOT (status = ANY($1))
  AND ($2::timestamptz IS NULL OR (updated_at, id) > ($2::timestamptz, $3::text))
ORDER BY updated_at ASC, id ASC
LIMIT $4
`, terminal, afterAt, afterID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "select open donations")
	}
	return s.collect(ctx, rows)
}

func pageLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}

const selectSnapshots = `
SELECT
  id, status, food_type, temperature, packaging,
  fabrication_date, expiry_date, zone, updated_at
FROM donation_snapshots`

func (s *Storage) collect(ctx context.Context, rows pgx.Rows) ([]*models.Donation, error) {
	defer rows.Close()

	var out []*models.Donation
	byID := map[string]*models.Donation{}
	for rows.Next() {
		var d models.Donation
		var foodType, temperature, packaging string
		var fabrication, expiry *time.Time
		if err := rows.Scan(
			&d.ID, &d.Status, &foodType, &temperature, &packaging,
			&fabrication, &expiry, &d.Zone, &d.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "scan donation")
		}
		d.FoodType = models.FoodType(foodType)
		d.Temperature = models.TemperatureCategory(temperature)
		d.Packaging = models.PackagingType(packaging)
		d.FabricationDate = dateValue(fabrication)
		d.ExpiryDate = dateValue(expiry)
		d.UpdatedAt = d.UpdatedAt.UTC()
		d.PickupSlots = []models.PickupSlot{}

		out = append(out, &d)
		byID[d.ID] = &d
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(out))
	for _, d := range out {
		ids = append(ids, d.ID)
	}
	if err := s.attachSlots(ctx, ids, byID); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Storage) attachSlots(ctx context.Context, ids []string, byID map[string]*models.Donation) error {
	rows, err := s.db.Query(ctx, `
SELECT donation_id, pickup_date, start_time, end_time, notes
FROM donation_pickup_slots
WHERE donation_id = ANY($1)
ORDER BY donation_id, position
`, ids)
	if err != nil {
		return errors.Wrap(err, "select pickup slots")
	}
	defer rows.Close()

	for rows.Next() {
		var donationID string
		var pickupDate *time.Time
		var start, end pgtype.Time
		var slot models.PickupSlot
		if err := rows.Scan(&donationID, &pickupDate, &start, &end, &slot.Notes); err != nil {
			return errors.Wrap(err, "scan pickup slot")
		}
		slot.PickupDate = dateValue(pickupDate)
		slot.StartTime = timeValue(start)
		slot.EndTime = timeValue(end)

		if d, ok := byID[donationID]; ok {
			d.PickupSlots = append(d.PickupSlots, slot)
		}
	}
	if rows.Err() != nil {
		return errors.Wrap(rows.Err(), "rows")
	}
	return nil
}

func dateParam(d *civil.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.In(time.UTC)
	return &t
}

func dateValue(t *time.Time) *civil.Date {
	if t == nil {
		return nil
	}
	d := civil.DateOf(t.UTC())
	return &d
}

func timeParam(t *civil.Time) pgtype.Time {
	if t == nil {
		return pgtype.Time{}
	}
	us := int64(t.Hour)*int64(time.Hour/time.Microsecond) +
		int64(t.Minute)*int64(time.Minute/time.Microsecond) +
		int64(t.Second)*int64(time.Second/time.Microsecond) +
		int64(t.Nanosecond)/1000
	return pgtype.Time{Microseconds: us, Valid: true}
}

func timeValue(t pgtype.Time) *civil.Time {
	if !t.Valid {
		return nil
	}
	d := time.Duration(t.Microseconds) * time.Microsecond
	ct := civil.Time{
		Hour:       int(d / time.Hour),
		Minute:     int(d % time.Hour / time.Minute),
		Second:     int(d % time.Minute / time.Second),
		Nanosecond: int(d % time.Second),
	}
	return &ct
}
