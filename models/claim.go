package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Claim status values
const (
	ClaimStatusPending   = "pending"
	ClaimStatusVerified  = "verified"
	ClaimStatusShipped   = "shipped"
	ClaimStatusDelivered = "delivered"
	ClaimStatusCancelled = "cancelled"
)

// Claim source values
const (
	ClaimSourceDirect      = "direct"
	ClaimSourceQR          = "qr"
	ClaimSourceWaitlist    = "waitlist"
	ClaimSourceMagicLink   = "magic-link"
	ClaimSourceSponsorLink = "sponsor-link"
	ClaimSourcePartnerAPI  = "PARTNER_API"
)

// Claim holds the structure for the claims collection in mongo
type Claim struct {
	ID            primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CauseID       primitive.ObjectID `json:"causeId" bson:"causeId"`
	Email         string             `json:"email" bson:"email"`
	FullName      string             `json:"fullName" bson:"fullName"`
	Phone         string             `json:"phone" bson:"phone"`
	Address       string             `json:"address" bson:"address"`
	City          string             `json:"city" bson:"city"`
	PostalCode    string             `json:"postalCode" bson:"postalCode"`
	Status        string             `json:"status" bson:"status"`
	EmailVerified bool               `json:"emailVerified" bson:"emailVerified"`
	Source        string             `json:"source" bson:"source"`
	QRCodeScanned bool               `json:"qrCodeScanned" bson:"qrCodeScanned"`
	OTPCode       string             `json:"-" bson:"otpCode,omitempty"`
	OTPExpiresAt  *time.Time         `json:"-" bson:"otpExpiresAt,omitempty"`
	ShippingDate  *time.Time         `json:"shippingDate,omitempty" bson:"shippingDate,omitempty"`
	DeliveryDate  *time.Time         `json:"deliveryDate,omitempty" bson:"deliveryDate,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ClaimListResponse is the paginated claims listing payload
type ClaimListResponse struct {
	Claims []Claim `json:"claims"`
	Total  int64   `json:"total"`
	Page   int     `json:"page"`
	Pages  int     `json:"pages"`
}
