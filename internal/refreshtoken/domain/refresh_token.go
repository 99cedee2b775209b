package domain

import (
	"errors"
	"time"
)

var (
	// ErrAlreadyRevoked is returned by a conditional revoke that found the token already revoked.
	ErrAlreadyRevoked = errors.New("refresh token already revoked")
	// ErrDuplicateToken is returned when a token with the same hash already exists.
	ErrDuplicateToken = errors.New("refresh token already exists")
)

// RefreshToken is a persisted, opaque, long-lived credential used to obtain new access tokens.
// Only TokenHash is stored; Token holds the raw value between issuance and delivery to the client.
type RefreshToken struct {
	ID             string
	UserID         string
	Token          string // raw opaque value; never persisted
	TokenHash      string // SHA-256 hex of Token; unique
	ExpiresAt      time.Time
	Revoked        bool
	RevokedAt      *time.Time // nil when not revoked
	ReplacedByHash string     // hash of the rotation successor; empty on logout or while active
	CreatedAt      time.Time
}

// IsActive reports whether the token can still be exchanged at now.
// Revoked tokens stay inactive even after the clock moves.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.Revoked && now.Before(t.ExpiresAt)
}

// IsExpired reports whether now is at or past ExpiresAt.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
