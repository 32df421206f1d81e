package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sponsorship status values
const (
	SponsorshipStatusPending   = "pending"
	SponsorshipStatusApproved  = "approved"
	SponsorshipStatusRejected  = "rejected"
	SponsorshipStatusCompleted = "completed"
	SponsorshipStatusFailed    = "failed"
)

// Distribution type values
const (
	DistributionTypeOnline   = "online"
	DistributionTypePhysical = "physical"
)

// DefaultLogoURL is used when a sponsor submits no logo or the client-side
// placeholder sentinel
const DefaultLogoURL = "https://assets.changebag.org/logos/default-tote-logo.png"

// LogoPosition holds the sponsor logo placement on the tote mockup
type LogoPosition struct {
	X     float64 `json:"x" bson:"x"`
	Y     float64 `json:"y" bson:"y"`
	Scale float64 `json:"scale" bson:"scale"`
	Angle float64 `json:"angle" bson:"angle"`
}

// Demographics holds the sponsor's target audience selections
type Demographics struct {
	AgeGroups []string `json:"ageGroups" bson:"ageGroups"`
	Income    string   `json:"income" bson:"income"`
	Education string   `json:"education" bson:"education"`
	Other     string   `json:"other" bson:"other"`
}

// DistributionLocation is the canonical flat shape for a physical
// distribution point
type DistributionLocation struct {
	Name          string `json:"name" bson:"name"`
	Address       string `json:"address" bson:"address"`
	ContactPerson string `json:"contactPerson" bson:"contactPerson"`
	Phone         string `json:"phone" bson:"phone"`
	Location      string `json:"location" bson:"location"`
	TotesCount    int    `json:"totesCount" bson:"totesCount"`
}

// Sponsorship holds the structure for the sponsorships collection in mongo
type Sponsorship struct {
	ID                    primitive.ObjectID     `json:"_id" bson:"_id,omitempty"`
	Cause                 primitive.ObjectID     `json:"cause" bson:"cause"`
	Sponsor               string                 `json:"sponsor" bson:"sponsor"`
	OrganizationName      string                 `json:"organizationName" bson:"organizationName"`
	ContactName           string                 `json:"contactName" bson:"contactName"`
	Email                 string                 `json:"email" bson:"email"`
	Phone                 string                 `json:"phone" bson:"phone"`
	ToteQuantity          int                    `json:"toteQuantity" bson:"toteQuantity"`
	NumberOfTotes         int                    `json:"numberOfTotes" bson:"numberOfTotes"`
	UnitPrice             float64                `json:"unitPrice" bson:"unitPrice"`
	TotalAmount           float64                `json:"totalAmount" bson:"totalAmount"`
	Message               string                 `json:"message" bson:"message"`
	LogoURL               string                 `json:"logoUrl" bson:"logoUrl"`
	LogoPosition          LogoPosition           `json:"logoPosition" bson:"logoPosition"`
	Demographics          Demographics           `json:"demographics" bson:"demographics"`
	DistributionType      string                 `json:"distributionType" bson:"distributionType"`
	SelectedCities        []string               `json:"selectedCities" bson:"selectedCities"`
	DistributionLocations []DistributionLocation `json:"distributionLocations" bson:"distributionLocations"`
	DistributionStartDate *time.Time             `json:"distributionStartDate,omitempty" bson:"distributionStartDate,omitempty"`
	DistributionEndDate   *time.Time             `json:"distributionEndDate,omitempty" bson:"distributionEndDate,omitempty"`
	Status                string                 `json:"status" bson:"status"`
	ApprovedBy            string                 `json:"approvedBy,omitempty" bson:"approvedBy,omitempty"`
	ApprovedAt            *time.Time             `json:"approvedAt,omitempty" bson:"approvedAt,omitempty"`
	RejectionReason       string                 `json:"rejectionReason,omitempty" bson:"rejectionReason,omitempty"`
	EndedAt               *time.Time             `json:"endedAt,omitempty" bson:"endedAt,omitempty"`
	EndedBy               string                 `json:"endedBy,omitempty" bson:"endedBy,omitempty"`
	IsOnline              bool                   `json:"isOnline" bson:"isOnline"`
	CreatedAt             time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time              `json:"updatedAt" bson:"updatedAt"`
}
