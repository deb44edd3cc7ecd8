package messages

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"
)

func TestDonationUpdated_UpdatedAtFormats(t *testing.T) {
	want := time.Date(2026, 2, 10, 15, 0, 0, 0, time.UTC)
	for _, raw := range []string{
		`"2026-02-10T15:00:00"`,
		`"2026-02-10 15:00:00"`,
		`"2026-02-10T15:00:00Z"`,
		`"2026-02-10T10:00:00-05:00"`,
	} {
		var m DonationUpdated
		require.NoError(t, json.Unmarshal([]byte(`{"donation_id":"don-1","updated_at":`+raw+`}`), &m), raw)
		require.Equal(t, "don-1", m.DonationID)
		require.True(t, want.Equal(m.UpdatedAt), "%s -> %s", raw, m.UpdatedAt)
	}

	var m DonationUpdated
	require.NoError(t, json.Unmarshal([]byte(`{"donation_id":"don-1"}`), &m))
	require.True(t, m.UpdatedAt.IsZero())

	require.Error(t, json.Unmarshal([]byte(`{"donation_id":"don-1","updated_at":"10/02/2026"}`), &m))
}

func TestDonationUpdated_SlotTimes(t *testing.T) {
	var m DonationUpdated
	require.NoError(t, json.Unmarshal([]byte(`{
  "donation_id": "don-1",
  "status": "AVAILABLE",
  "expiry_date": "2026-02-12",
  "pickup_slots": [
    {"pickup_date": "2026-02-11", "start_time": "09:00", "end_time": "11:30:00", "notes": "back door"},
    {"pickup_date": "2026-02-12", "start_time": null}
  ]
}`), &m))

	require.Equal(t, "AVAILABLE", m.Status)
	require.Equal(t, civil.Date{Year: 2026, Month: 2, Day: 12}, *m.ExpiryDate)
	require.Len(t, m.PickupSlots, 2)

	first := m.PickupSlots[0]
	require.Equal(t, civil.Time{Hour: 9}, *first.StartTime)
	require.Equal(t, civil.Time{Hour: 11, Minute: 30}, *first.EndTime)
	require.Equal(t, "back door", *first.Notes)

	second := m.PickupSlots[1]
	require.Nil(t, second.StartTime)
	require.Nil(t, second.EndTime)

	err := json.Unmarshal([]byte(`{"pickup_slots":[{"end_time":"late"}]}`), &m)
	require.Error(t, err)
	require.Contains(t, err.Error(), "end_time")
}

func TestDonationUpdated_DecodesWhatItEncodes(t *testing.T) {
	start := civil.Time{Hour: 13}
	in := DonationUpdated{
		DonationID:  "don-1",
		UpdatedAt:   time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC),
		Status:      "CLAIMED",
		PickupSlots: []PickupSlot{{StartTime: &start}},
	}
	raw, err := json.Marshal(in)
	require.NoError(t, err)

	var out DonationUpdated
	require.NoError(t, json.Unmarshal(raw, &out))
	require.True(t, in.UpdatedAt.Equal(out.UpdatedAt))
	require.Equal(t, start, *out.PickupSlots[0].StartTime)
}
