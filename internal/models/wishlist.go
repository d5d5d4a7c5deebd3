package models

import (
	"time"
)

// WishlistItem is a listing saved by a user, stored in `wishlists`.
type WishlistItem struct {
	Base       `bson:",inline"`
	PropertyID string     `bson:"main_id" json:"main_id"`
	UserEmail  string     `bson:"user_email" json:"user_email"`
	Title      string     `bson:"title,omitempty" json:"title,omitempty"`
	Location   string     `bson:"location,omitempty" json:"location,omitempty"`
	Image      string     `bson:"image,omitempty" json:"image,omitempty"`
	AgentName  string     `bson:"agent_name,omitempty" json:"agent_name,omitempty"`
	AgentEmail string     `bson:"agent_email,omitempty" json:"agent_email,omitempty"`
	PriceRange PriceRange `bson:"price_range" json:"price_range"`
	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
}
