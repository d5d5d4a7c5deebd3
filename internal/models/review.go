package models

import (
	"time"
)

// Review is a user's review of a listing, stored in `reviews`.
type Review struct {
	Base          `bson:",inline"`
	PropertyID    string    `bson:"property_id" json:"property_id"`
	PropertyTitle string    `bson:"property_title,omitempty" json:"property_title,omitempty"`
	AgentName     string    `bson:"agent_name,omitempty" json:"agent_name,omitempty"`
	ReviewerName  string    `bson:"reviewer_name" json:"reviewer_name"`
	ReviewerEmail string    `bson:"reviewer_email" json:"reviewer_email"`
	ReviewerImage string    `bson:"reviewer_image,omitempty" json:"reviewer_image,omitempty"`
	Description   string    `bson:"description" json:"description"`
	Rating        int       `bson:"rating,omitempty" json:"rating,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
}
