package users

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id,omitempty"`         // Unique identifier for the user
	Email        string    `json:"email,omitempty"`      // Lowercased, unique email address
	PasswordHash string    `json:"-"`                    // Hashed version of the user's password - never serialize
	FullName     string    `json:"full_name,omitempty"`  // Optional display name
	CreatedAt    time.Time `json:"created_at,omitempty"` // Date and time when the user registered
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DisplayLabel returns the full name when set, otherwise the email.
func (u *User) DisplayLabel() string {
	if name := strings.TrimSpace(u.FullName); name != "" {
		return name
	}
	return u.Email
}
