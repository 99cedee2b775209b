package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrDuplicateEmail is returned by the store when the normalized email is already taken.
var ErrDuplicateEmail = errors.New("email already exists")

// User is an account that can authenticate with email and password.
type User struct {
	ID           string
	Email        string // normalized; see NormalizeEmail
	PasswordHash string
	FirstName    string
	LastName     string
	RoleID       string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail trims surrounding whitespace and lower-cases email.
// Every lookup and insert goes through it so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.ID == "" {
		return errors.New("id is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if u.RoleID == "" {
		return errors.New("role is required")
	}
	return nil
}
