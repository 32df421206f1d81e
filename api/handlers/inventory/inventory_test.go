package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/changebag/causeconnect-api/api/handlers/inventory"
	"github.com/changebag/causeconnect-api/models"
)

func TestCompute_OnlyApprovedSponsorshipsCount(t *testing.T) {
	sponsorships := []models.Sponsorship{
		{ToteQuantity: 100, Status: models.SponsorshipStatusApproved},
		{ToteQuantity: 50, Status: models.SponsorshipStatusPending},
		{ToteQuantity: 25, Status: models.SponsorshipStatusRejected},
	}

	inv := inventory.Compute(sponsorships, nil)

	assert.Equal(t, 100, inv.TotalTotes)
	assert.Equal(t, 0, inv.ClaimedTotes)
	assert.Equal(t, 100, inv.AvailableTotes)
}

func TestCompute_PendingClaimsDoNotConsume(t *testing.T) {
	sponsorships := []models.Sponsorship{
		{ToteQuantity: 10, Status: models.SponsorshipStatusApproved},
	}
	claims := []models.Claim{
		{Status: models.ClaimStatusPending},
		{Status: models.ClaimStatusVerified},
		{Status: models.ClaimStatusShipped},
		{Status: models.ClaimStatusDelivered},
		{Status: models.ClaimStatusCancelled},
	}

	inv := inventory.Compute(sponsorships, claims)

	assert.Equal(t, 10, inv.TotalTotes)
	assert.Equal(t, 3, inv.ClaimedTotes)
	assert.Equal(t, 7, inv.AvailableTotes)
}

func TestCompute_AvailableNeverNegative(t *testing.T) {
	sponsorships := []models.Sponsorship{
		{ToteQuantity: 2, Status: models.SponsorshipStatusApproved},
	}
	claims := []models.Claim{
		{Status: models.ClaimStatusVerified},
		{Status: models.ClaimStatusVerified},
		{Status: models.ClaimStatusVerified},
	}

	inv := inventory.Compute(sponsorships, claims)

	assert.Equal(t, 2, inv.TotalTotes)
	assert.Equal(t, 3, inv.ClaimedTotes)
	assert.Equal(t, 0, inv.AvailableTotes)
}

func TestCompute_NoApprovedSponsorships(t *testing.T) {
	inv := inventory.Compute(nil, nil)

	assert.Equal(t, 0, inv.TotalTotes)
	assert.Equal(t, 0, inv.AvailableTotes)
}

func TestCompute_Idempotent(t *testing.T) {
	sponsorships := []models.Sponsorship{
		{ToteQuantity: 40, Status: models.SponsorshipStatusApproved},
		{ToteQuantity: 60, Status: models.SponsorshipStatusApproved},
	}
	claims := []models.Claim{
		{Status: models.ClaimStatusVerified},
		{Status: models.ClaimStatusDelivered},
	}

	first := inventory.Compute(sponsorships, claims)
	second := inventory.Compute(sponsorships, claims)

	assert.Equal(t, first, second)
	assert.Equal(t, 98, first.AvailableTotes)
}

func TestConsumes(t *testing.T) {
	assert.False(t, inventory.Consumes(models.ClaimStatusPending))
	assert.False(t, inventory.Consumes(models.ClaimStatusCancelled))
	assert.True(t, inventory.Consumes(models.ClaimStatusVerified))
	assert.True(t, inventory.Consumes(models.ClaimStatusShipped))
	assert.True(t, inventory.Consumes(models.ClaimStatusDelivered))
}
