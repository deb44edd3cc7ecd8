// Package status collapses the raw lifecycle status of a donation into the
// small set of display phases every view branches on. Views must switch on
// the returned phase rather than on raw status strings.
package status

import "github.com/BearBump/FoodBridge/internal/models"

var phases = map[string]models.DisplayPhase{
	models.DonationStatusReadyForPickup: models.PhaseReadyForPickup,
	models.DonationStatusCompleted:      models.PhaseCompleted,
	models.DonationStatusNotCompleted:   models.PhaseNotCompleted,
	models.DonationStatusExpired:        models.PhaseExpired,
}

// Classify maps a raw status to its display phase. Anything not explicitly
// mapped, including AVAILABLE, CLAIMED and the empty string, is Claimed.
func Classify(raw string) models.DisplayPhase {
	if p, ok := phases[raw]; ok {
		return p
	}
	return models.PhaseClaimed
}

// IsTerminal reports whether no further pickup can happen in this phase.
func IsTerminal(p models.DisplayPhase) bool {
	switch p {
	case models.PhaseCompleted, models.PhaseNotCompleted, models.PhaseExpired:
		return true
	}
	return false
}

// TerminalStatuses lists the raw statuses whose phase is terminal.
func TerminalStatuses() []string {
	return []string{
		models.DonationStatusCompleted,
		models.DonationStatusNotCompleted,
		models.DonationStatusExpired,
	}
}
