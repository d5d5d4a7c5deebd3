package services

import (
	"errors"
	"fmt"

	"github.com/zunayedTheCreator/property-prospect-server/internal/db"
)

var (
	// ErrNotFound is returned when an identifier does not resolve to a record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned for malformed identifiers.
	ErrInvalidID = db.ErrInvalidID
	// ErrInvalidArgument is returned when a request is well-formed but inconsistent.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrForbidden is returned when the caller does not own the record it targets.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is returned when the requested transition would break the listing claim.
	ErrConflict = errors.New("conflict")
	// ErrStoreTimeout is returned when a store call exceeds its deadline. Callers may retry.
	ErrStoreTimeout = errors.New("store call timed out")
	// ErrInvalidCredentials is returned when a password does not match the stored hash.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when inserting a user whose email is already registered.
	ErrUserExists = errors.New("user already exist")
)

// storeErr classifies a driver error. The operation name is kept for logs.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsNotFound(err):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case db.IsTimeout(err):
		return fmt.Errorf("%s: %w", op, ErrStoreTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
