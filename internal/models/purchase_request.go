package models

import (
	"time"
)

// PurchaseStatus is the state of a purchase request.
type PurchaseStatus string

const (
	StatusRequested PurchaseStatus = "Requested"
	StatusAccepted  PurchaseStatus = "Accepted"
	StatusRejected  PurchaseStatus = "Rejected"
	StatusBought    PurchaseStatus = "Bought"
)

// Valid reports whether s is one of the known statuses.
func (s PurchaseStatus) Valid() bool {
	switch s {
	case StatusRequested, StatusAccepted, StatusRejected, StatusBought:
		return true
	}
	return false
}

// ClaimsListing reports whether a request in this status holds the listing.
// At most one request per listing may claim it.
func (s PurchaseStatus) ClaimsListing() bool {
	return s == StatusAccepted || s == StatusBought
}

// PurchaseRequest is a buyer's offer on a listing, stored in `broughtProperties`.
type PurchaseRequest struct {
	Base           `bson:",inline"`
	ListingID      string         `bson:"main_id" json:"main_id"`
	RequesterEmail string         `bson:"buyer_email" json:"buyer_email"`
	AgentEmail     string         `bson:"agent_email" json:"agent_email"`
	Status         PurchaseStatus `bson:"status" json:"status"`
	PaymentID      string         `bson:"payment_id,omitempty" json:"payment_id,omitempty"`

	// Denormalised from the listing and the buyer for display.
	Title         string  `bson:"title,omitempty" json:"title,omitempty"`
	Location      string  `bson:"location,omitempty" json:"location,omitempty"`
	Image         string  `bson:"image,omitempty" json:"image,omitempty"`
	AgentName     string  `bson:"agent_name,omitempty" json:"agent_name,omitempty"`
	BuyerName     string  `bson:"buyer_name,omitempty" json:"buyer_name,omitempty"`
	OfferedAmount float64 `bson:"offered_amount,omitempty" json:"offered_amount,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
