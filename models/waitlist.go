package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Waitlist status values
const (
	WaitlistStatusWaiting  = "waiting"
	WaitlistStatusNotified = "notified"
	WaitlistStatusClaimed  = "claimed"
	WaitlistStatusExpired  = "expired"
)

// MagicLinkTTL is how long a waitlist magic link stays valid after it is sent
const MagicLinkTTL = 48 * time.Hour

// WaitlistEntry holds the structure for the waitlist collection in mongo
type WaitlistEntry struct {
	ID               primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	CauseID          primitive.ObjectID `json:"causeId" bson:"causeId"`
	Email            string             `json:"email" bson:"email"`
	FullName         string             `json:"fullName" bson:"fullName"`
	Phone            string             `json:"phone" bson:"phone"`
	Position         int                `json:"position" bson:"position"`
	Status           string             `json:"status" bson:"status"`
	NotifyEmail      bool               `json:"notifyEmail" bson:"notifyEmail"`
	MagicLinkToken   string             `json:"-" bson:"magicLinkToken,omitempty"`
	MagicLinkSentAt  *time.Time         `json:"magicLinkSentAt,omitempty" bson:"magicLinkSentAt,omitempty"`
	MagicLinkExpires *time.Time         `json:"magicLinkExpires,omitempty" bson:"magicLinkExpires,omitempty"`
	CreatedAt        time.Time          `json:"createdAt" bson:"createdAt"`
}

// Counter holds a per-scope sequence document in the counters collection.
// Waitlist positions use scope "waitlist:<causeId>", invoice numbers use
// scope "invoice".
type Counter struct {
	ID    string `json:"_id" bson:"_id"`
	Value int    `json:"value" bson:"value"`
}
