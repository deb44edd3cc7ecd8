package messages

import "time"

type PhaseChanged struct {
	DonationID    string    `json:"donation_id"`
	PreviousPhase string    `json:"previous_phase,omitempty"`
	Phase         string    `json:"phase"`
	RawStatus     string    `json:"raw_status"`
	ChangedAt     time.Time `json:"changed_at"`
}
