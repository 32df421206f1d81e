// Package inventory derives the tote inventory for a cause from its
// sponsorships and claims. Nothing here is ever persisted: the numbers are
// recomputed on every read so a stored counter can never drift from the
// underlying documents.
package inventory

import "github.com/changebag/causeconnect-api/models"

// Inventory is the derived tote triple for a cause
type Inventory struct {
	TotalTotes     int `json:"totalTotes"`
	ClaimedTotes   int `json:"claimedTotes"`
	AvailableTotes int `json:"availableTotes"`
}

// Compute derives the inventory from a cause's sponsorships and claims.
// Only approved sponsorships contribute totes, and only claims that have
// been verified (or later) consume them; a pending claim is an intent, not
// a reservation.
func Compute(sponsorships []models.Sponsorship, claims []models.Claim) Inventory {
	inv := Inventory{}
	for _, s := range sponsorships {
		if s.Status == models.SponsorshipStatusApproved {
			inv.TotalTotes += s.ToteQuantity
		}
	}
	for _, c := range claims {
		if Consumes(c.Status) {
			inv.ClaimedTotes++
		}
	}
	inv.AvailableTotes = inv.TotalTotes - inv.ClaimedTotes
	if inv.AvailableTotes < 0 {
		inv.AvailableTotes = 0
	}
	return inv
}

// Consumes reports whether a claim in the given status consumes a tote
func Consumes(status string) bool {
	switch status {
	case models.ClaimStatusVerified, models.ClaimStatusShipped, models.ClaimStatusDelivered:
		return true
	}
	return false
}
