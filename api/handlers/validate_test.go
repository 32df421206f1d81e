package handlers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/changebag/causeconnect-api/models"
)

func TestMissingFieldsOrder(t *testing.T) {
	missing := missingFields([]requiredField{
		{"a", true},
		{"b", false},
		{"c", true},
		{"d", true},
	})
	assert.Equal(t, []string{"a", "c", "d"}, missing)
	assert.EqualError(t, missingFieldsError(missing), "missing: a, c, d")
}

func TestFlattenLocationsFlatShape(t *testing.T) {
	var raw []rawDistributionLocation
	err := json.Unmarshal([]byte(`[
		{"name": "Community Center", "address": "12 Main St", "contactPerson": "Ravi", "phone": "12345", "location": "Mumbai", "totesCount": 40}
	]`), &raw)
	assert.NoError(t, err)

	out := flattenLocations(raw)
	assert.Len(t, out, 1)
	assert.Equal(t, "Community Center", out[0].Name)
	assert.Equal(t, "12 Main St", out[0].Address)
	assert.Equal(t, 40, out[0].TotesCount)
}

func TestFlattenLocationsNestedShape(t *testing.T) {
	var raw []rawDistributionLocation
	err := json.Unmarshal([]byte(`[
		{"name": {"name": "City Library", "address": "9 Park Ave", "contactPerson": "Asha", "phone": "98765", "location": "Pune", "totesCount": 25}}
	]`), &raw)
	assert.NoError(t, err)

	out := flattenLocations(raw)
	assert.Len(t, out, 1)
	assert.Equal(t, "City Library", out[0].Name)
	assert.Equal(t, "9 Park Ave", out[0].Address)
	assert.Equal(t, "Asha", out[0].ContactPerson)
	assert.Equal(t, 25, out[0].TotesCount)
}

func TestValidateClaimTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{models.ClaimStatusPending, models.ClaimStatusVerified, true},
		{models.ClaimStatusVerified, models.ClaimStatusShipped, true},
		{models.ClaimStatusShipped, models.ClaimStatusDelivered, true},
		{models.ClaimStatusPending, models.ClaimStatusShipped, true},
		{models.ClaimStatusPending, models.ClaimStatusCancelled, true},
		{models.ClaimStatusShipped, models.ClaimStatusCancelled, true},
		{models.ClaimStatusShipped, models.ClaimStatusVerified, false},
		{models.ClaimStatusDelivered, models.ClaimStatusCancelled, false},
		{models.ClaimStatusCancelled, models.ClaimStatusVerified, false},
		{models.ClaimStatusVerified, models.ClaimStatusVerified, false},
	}

	for _, tc := range cases {
		err := validateClaimTransition(tc.from, tc.to)
		if tc.ok {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.Error(t, err, "%s -> %s", tc.from, tc.to)
		}
	}
}

func TestGenerateOTPFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := generateOTP()
		assert.NoError(t, err)
		assert.Len(t, code, 6)
		seen[code] = true
	}
	// 20 draws from a million values colliding down to one code would mean
	// the generator is broken
	assert.Greater(t, len(seen), 1)
}
