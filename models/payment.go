package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payment status values
const (
	PaymentStatusCreated  = "created"
	PaymentStatusCaptured = "captured"
	PaymentStatusFailed   = "failed"
)

// Payment holds the structure for the payments collection in mongo
type Payment struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	SponsorshipID primitive.ObjectID `json:"sponsorshipId" bson:"sponsorshipId"`
	OrderID       string             `json:"orderId" bson:"orderId"`
	PaymentID     string             `json:"paymentId,omitempty" bson:"paymentId,omitempty"`
	Amount        float64            `json:"amount" bson:"amount"`
	Currency      string             `json:"currency" bson:"currency"`
	Status        string             `json:"status" bson:"status"`
	Email         string             `json:"email" bson:"email"`
	InvoiceNumber string             `json:"invoiceNumber,omitempty" bson:"invoiceNumber,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}
