package messages

import "time"

const (
	AttentionExpiryPassed        = "EXPIRY_PASSED"
	AttentionPickupWindowsPassed = "PICKUP_WINDOWS_PASSED"
)

// DonationAttention flags an open donation that can no longer be picked up
// as scheduled.
type DonationAttention struct {
	DonationID string    `json:"donation_id"`
	Reason     string    `json:"reason"`
	Phase      string    `json:"phase"`
	DetectedAt time.Time `json:"detected_at"`
}
