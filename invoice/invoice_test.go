package invoice_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/changebag/causeconnect-api/invoice"
	"github.com/changebag/causeconnect-api/models"
)

func TestBuild(t *testing.T) {
	pdf, err := invoice.Build(invoice.Data{
		InvoiceNumber:    "CB-2026-000042",
		IssuedAt:         time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		OrganizationName: "Acme Corp",
		ContactName:      "Jane Doe",
		Email:            "jane@acme.example",
		CauseTitle:       "Clean Water for All",
		ToteQuantity:     100,
		UnitPrice:        50,
		Payment: models.Payment{
			OrderID:   "order_123",
			PaymentID: "pay_456",
			Amount:    5000,
			Currency:  "INR",
		},
	})

	assert.NoError(t, err)
	assert.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}
