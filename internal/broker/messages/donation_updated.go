package messages

import (
	"encoding/json"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"

	"github.com/BearBump/FoodBridge/internal/tzclock"
)

// DonationUpdated is published by the donation authority whenever a donation
// record changes. It is the only input of the snapshot projection.
// updated_at may be a naive UTC timestamp and slot times may be HH:MM.
type DonationUpdated struct {
	DonationID string    `json:"donation_id"`
	UpdatedAt  time.Time `json:"updated_at"`

	Status      string `json:"status"`
	FoodType    string `json:"food_type"`
	Temperature string `json:"temperature,omitempty"`
	Packaging   string `json:"packaging,omitempty"`

	FabricationDate *civil.Date `json:"fabrication_date,omitempty"`
	ExpiryDate      *civil.Date `json:"expiry_date,omitempty"`

	// IANA zone of the donor. Empty means the service default.
	Zone string `json:"zone,omitempty"`

	PickupSlots []PickupSlot `json:"pickup_slots,omitempty"`
}

func (m *DonationUpdated) UnmarshalJSON(data []byte) error {
	type plain DonationUpdated
	aux := struct {
		*plain
		UpdatedAt string `json:"updated_at"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	m.UpdatedAt = time.Time{}
	if aux.UpdatedAt != "" {
		t, ok := tzclock.ToInstant(aux.UpdatedAt)
		if !ok {
			return errors.Errorf("invalid updated_at %q", aux.UpdatedAt)
		}
		m.UpdatedAt = t
	}
	return nil
}

type PickupSlot struct {
	PickupDate *civil.Date `json:"pickup_date,omitempty"`
	StartTime  *civil.Time `json:"start_time,omitempty"`
	EndTime    *civil.Time `json:"end_time,omitempty"`
	Notes      *string     `json:"notes,omitempty"`
}

func (s *PickupSlot) UnmarshalJSON(data []byte) error {
	type plain PickupSlot
	aux := struct {
		*plain
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if s.StartTime, err = clockField("start_time", aux.StartTime); err != nil {
		return err
	}
	s.EndTime, err = clockField("end_time", aux.EndTime)
	return err
}

func clockField(name, raw string) (*civil.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, ok := tzclock.ParseClock(raw)
	if !ok {
		return nil, errors.Errorf("invalid %s %q", name, raw)
	}
	return &t, nil
}
