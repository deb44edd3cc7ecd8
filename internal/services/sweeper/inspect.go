package sweeper

import (
	"time"

	"github.com/BearBump/FoodBridge/internal/broker/messages"
	"github.com/BearBump/FoodBridge/internal/models"
	"github.com/BearBump/FoodBridge/internal/services/pickup"
	"github.com/BearBump/FoodBridge/internal/services/status"
	"github.com/BearBump/FoodBridge/internal/tzclock"
)

// Inspect decides whether an open donation needs attention at now, judging
// calendar days in zone. Expiry wins over pickup windows.
func Inspect(d *models.Donation, now time.Time, zone *time.Location) (reason string, ok bool) {
	if d == nil || status.IsTerminal(status.Classify(d.Status)) {
		return "", false
	}
	if d.ExpiryDate != nil && d.ExpiryDate.Before(tzclock.Today(now, zone)) {
		return messages.AttentionExpiryPassed, true
	}
	if allWindowsPassed(d, now, zone) {
		return messages.AttentionPickupWindowsPassed, true
	}
	return "", false
}

// allWindowsPassed is true when the donation has slots and every one of them
// is rejected only because it lies in the past.
func allWindowsPassed(d *models.Donation, now time.Time, zone *time.Location) bool {
	if len(d.PickupSlots) == 0 {
		return false
	}
	for _, slot := range d.PickupSlots {
		expiry := d.ExpiryDate
		if expiry == nil {
			expiry = slot.PickupDate
		}
		if expiry == nil {
			return false
		}
		switch pickup.ReasonOf(pickup.ValidateSlot(slot, *expiry, now, zone)) {
		case pickup.ReasonPastPickupDate, pickup.ReasonWindowAlreadyPassed:
		default:
			return false
		}
	}
	return true
}
