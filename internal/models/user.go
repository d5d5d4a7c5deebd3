package models

import (
	"time"
)

// Role is the authorization tag on a user record.
type Role string

const (
	RoleNormal Role = "normal"
	RoleAgent  Role = "agent"
	RoleAdmin  Role = "admin"
)

// UserStatusFraud marks an agent that has been flagged by an administrator.
const UserStatusFraud = "fraud"

// User represents an account in the `users` collection. Email is the unique key.
type User struct {
	Base         `bson:",inline"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`
	Photo        string    `bson:"photo,omitempty" json:"photo,omitempty"`
	Role         Role      `bson:"role,omitempty" json:"role,omitempty"`
	Status       string    `bson:"status,omitempty" json:"status,omitempty"`
	PasswordHash string    `bson:"password,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// EffectiveRole returns the user's role, defaulting to normal.
func (u *User) EffectiveRole() Role {
	if u.Role == "" {
		return RoleNormal
	}
	return u.Role
}

// IsFraud reports whether the user has been flagged fraudulent.
func (u *User) IsFraud() bool {
	return u.Status == UserStatusFraud
}
