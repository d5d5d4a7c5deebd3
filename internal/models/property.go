package models

import (
	"time"
)

// VerificationStatus is the admin review state of a listing.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "Unverified"
	VerificationVerified   VerificationStatus = "Verified"
	VerificationRejected   VerificationStatus = "Rejected"
)

// PriceRange is the asking price band of a listing.
type PriceRange struct {
	Min float64 `bson:"min" json:"min"`
	Max float64 `bson:"max" json:"max"`
}

// Property is a listing in the `properties` collection.
type Property struct {
	Base               `bson:",inline"`
	Title              string             `bson:"title" json:"title"`
	Location           string             `bson:"location" json:"location"`
	Image              string             `bson:"image,omitempty" json:"image,omitempty"`
	Images             []string           `bson:"images,omitempty" json:"images,omitempty"`
	Description        string             `bson:"description,omitempty" json:"description,omitempty"`
	AgentName          string             `bson:"agent_name" json:"agent_name"`
	AgentEmail         string             `bson:"agent_email" json:"agent_email"`
	AgentImage         string             `bson:"agent_image,omitempty" json:"agent_image,omitempty"`
	PriceRange         PriceRange         `bson:"price_range" json:"price_range"`
	VerificationStatus VerificationStatus `bson:"verification_status" json:"verification_status"`
	Advertised         bool               `bson:"advertised" json:"advertised"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}
