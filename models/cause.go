package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cause status values
const (
	CauseStatusPending   = "pending"
	CauseStatusApproved  = "approved"
	CauseStatusCompleted = "completed"
	CauseStatusRejected  = "rejected"
)

// Cause holds the structure for the causes collection in mongo
type Cause struct {
	ID                    primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title                 string             `json:"title" bson:"title"`
	Description           string             `json:"description" bson:"description"`
	Category              string             `json:"category" bson:"category"`
	ImageURL              string             `json:"imageUrl" bson:"imageUrl"`
	TargetAmount          float64            `json:"targetAmount" bson:"targetAmount"`
	CurrentAmount         float64            `json:"currentAmount" bson:"currentAmount"`
	Status                string             `json:"status" bson:"status"`
	RejectionReason       string             `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	IsOnline              bool               `json:"isOnline" bson:"isOnline"`
	Creator               string             `json:"creator" bson:"creator"`
	DistributionStartDate *time.Time         `json:"distributionStartDate,omitempty" bson:"distributionStartDate,omitempty"`
	DistributionEndDate   *time.Time         `json:"distributionEndDate,omitempty" bson:"distributionEndDate,omitempty"`
	CreatedAt             time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CauseDetailResponse is the cause detail payload with the derived
// tote inventory attached
type CauseDetailResponse struct {
	Cause          Cause `json:"cause"`
	TotalTotes     int   `json:"totalTotes"`
	ClaimedTotes   int   `json:"claimedTotes"`
	AvailableTotes int   `json:"availableTotes"`
}
