package errors

import (
	"errors"
)

// Common error types for the gatekeeper server
var (
	// Credential errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")

	// Store errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrConnectionLost   = errors.New("store connection lost")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}
