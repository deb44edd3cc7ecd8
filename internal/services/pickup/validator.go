package pickup

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"

	"github.com/BearBump/FoodBridge/internal/models"
	"github.com/BearBump/FoodBridge/internal/tzclock"
)

// Reason identifies which rule rejected a set of pickup slots.
type Reason string

const (
	ReasonInvalidTarget       Reason = "INVALID_TARGET"
	ReasonMissingExpiry       Reason = "MISSING_EXPIRY"
	ReasonAlreadyExpired      Reason = "ALREADY_EXPIRED"
	ReasonIncompleteSlot      Reason = "INCOMPLETE_SLOT"
	ReasonPastPickupDate      Reason = "PAST_PICKUP_DATE"
	ReasonPickupAfterExpiry   Reason = "PICKUP_AFTER_EXPIRY"
	ReasonEndBeforeStart      Reason = "END_BEFORE_START"
	ReasonWindowAlreadyPassed Reason = "WINDOW_ALREADY_PASSED"
)

var reasonMessages = map[Reason]string{
	ReasonInvalidTarget:       "donation reference is missing",
	ReasonMissingExpiry:       "donation has no expiry date",
	ReasonAlreadyExpired:      "donation has already expired",
	ReasonIncompleteSlot:      "pickup slot needs a date, start time and end time",
	ReasonPastPickupDate:      "pickup date is in the past",
	ReasonPickupAfterExpiry:   "pickup date is after the expiry date",
	ReasonEndBeforeStart:      "pickup window must end after it starts",
	ReasonWindowAlreadyPassed: "pickup window has already passed",
}

// Rejection is returned when a rule fires. It carries only the reason.
type Rejection struct {
	Reason Reason
}

func (r *Rejection) Error() string {
	if msg, ok := reasonMessages[r.Reason]; ok {
		return msg
	}
	return fmt.Sprintf("pickup slots rejected: %s", r.Reason)
}

func reject(r Reason) error {
	return &Rejection{Reason: r}
}

// ReasonOf extracts the rejection reason from err, or "" when err is not a
// rejection.
func ReasonOf(err error) Reason {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}

// Request is a donation (or claim) reference plus the proposed slots, in the
// order they were created.
type Request struct {
	DonationID string
	ExpiryDate *civil.Date
	Slots      []models.PickupSlot
}

// Validate checks the donation-level rules and then every slot in order,
// returning the first violation. An empty slot list is INCOMPLETE_SLOT.
// "Today" is the calendar day of now in zone.
func Validate(req Request, now time.Time, zone *time.Location) error {
	if req.DonationID == "" {
		return reject(ReasonInvalidTarget)
	}
	if req.ExpiryDate == nil {
		return reject(ReasonMissingExpiry)
	}
	if req.ExpiryDate.Before(tzclock.Today(now, zone)) {
		return reject(ReasonAlreadyExpired)
	}
	if len(req.Slots) == 0 {
		return reject(ReasonIncompleteSlot)
	}
	for _, slot := range req.Slots {
		if err := ValidateSlot(slot, *req.ExpiryDate, now, zone); err != nil {
			return err
		}
	}
	return nil
}

// ValidateSlot applies the per-slot rules to a single slot.
func ValidateSlot(slot models.PickupSlot, expiry civil.Date, now time.Time, zone *time.Location) error {
	if slot.PickupDate == nil || slot.StartTime == nil || slot.EndTime == nil {
		return reject(ReasonIncompleteSlot)
	}
	today := tzclock.Today(now, zone)
	day := *slot.PickupDate
	if day.Before(today) {
		return reject(ReasonPastPickupDate)
	}
	if day.After(expiry) {
		return reject(ReasonPickupAfterExpiry)
	}
	if minuteOfDay(*slot.EndTime) <= minuteOfDay(*slot.StartTime) {
		return reject(ReasonEndBeforeStart)
	}
	if day == today && !tzclock.At(day, *slot.EndTime, zone).After(now) {
		return reject(ReasonWindowAlreadyPassed)
	}
	return nil
}

func minuteOfDay(t civil.Time) int {
	return t.Hour*60 + t.Minute
}
