package auth

import (
	"github.com/zunayedTheCreator/property-prospect-server/internal/models"
)

// Identity is a caller resolved against the identity store.
type Identity struct {
	Email string
	Role  models.Role
	Fraud bool
}

// IdentityOf builds the Identity of a stored user.
func IdentityOf(u *models.User) Identity {
	return Identity{Email: u.Email, Role: u.EffectiveRole(), Fraud: u.IsFraud()}
}

// Authorize reports whether id may act with the required role. Roles do not
// nest: an admin is not an agent. Flagged accounts fail every role check.
func Authorize(id Identity, required models.Role) bool {
	if id.Email == "" || id.Fraud {
		return false
	}
	switch required {
	case models.RoleNormal:
		return true
	case models.RoleAgent, models.RoleAdmin:
		return id.Role == required
	}
	return false
}
