package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// Raw lifecycle statuses as emitted by the system of record. The set is open:
// anything else must still be accepted.
const (
	DonationStatusAvailable      = "AVAILABLE"
	DonationStatusClaimed        = "CLAIMED"
	DonationStatusReadyForPickup = "READY_FOR_PICKUP"
	DonationStatusCompleted      = "COMPLETED"
	DonationStatusNotCompleted   = "NOT_COMPLETED"
	DonationStatusExpired        = "EXPIRED"
)

// DisplayPhase is the user-facing lifecycle phase derived from a raw status.
type DisplayPhase string

const (
	PhaseClaimed        DisplayPhase = "Claimed"
	PhaseReadyForPickup DisplayPhase = "ReadyForPickup"
	PhaseCompleted      DisplayPhase = "Completed"
	PhaseNotCompleted   DisplayPhase = "NotCompleted"
	PhaseExpired        DisplayPhase = "Expired"
)

// PickupSlot is one date + time window for collecting a donation.
// Nil fields are treated as missing.
type PickupSlot struct {
	PickupDate *civil.Date `json:"pickupDate"`
	StartTime  *civil.Time `json:"startTime"`
	EndTime    *civil.Time `json:"endTime"`
	Notes      *string     `json:"notes,omitempty"`
}

// ExpirySuggestion is derived from draft inputs and never stored.
type ExpirySuggestion struct {
	SuggestedExpiryDate *civil.Date `json:"suggestedExpiryDate"`
	ShelfLifeDays       *int        `json:"shelfLifeDays"`
	Eligible            bool        `json:"eligible"`
	Warnings            []string    `json:"warnings"`
	Explanation         *string     `json:"explanation"`
}

// Donation is the local snapshot of a donation owned by the system of record.
type Donation struct {
	ID              string              `json:"id"`
	Status          string              `json:"status"`
	FoodType        FoodType            `json:"foodType,omitempty"`
	Temperature     TemperatureCategory `json:"temperatureCategory,omitempty"`
	Packaging       PackagingType       `json:"packagingType,omitempty"`
	FabricationDate *civil.Date         `json:"fabricationDate,omitempty"`
	ExpiryDate      *civil.Date         `json:"expiryDate,omitempty"`
	Zone            string              `json:"zone,omitempty"`
	PickupSlots     []PickupSlot        `json:"pickupSlots"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

// DonationCursor marks a position in the (updated_at, id) ordering of
// snapshots. Listing resumes strictly after it.
type DonationCursor struct {
	UpdatedAt time.Time
	ID        string
}

// CursorAfter is the cursor positioned at d.
func CursorAfter(d *Donation) *DonationCursor {
	return &DonationCursor{UpdatedAt: d.UpdatedAt, ID: d.ID}
}
