package repository

import (
	"context"

	"eventflow/auth-service/internal/refreshtoken/domain"
)

// Repository defines persistence for refresh tokens. Implementations key tokens by
// the SHA-256 hash of the raw value and never store the value itself.
type Repository interface {
	// GetByValue returns the token whose hash matches value, or nil if none exists.
	GetByValue(ctx context.Context, value string) (*domain.RefreshToken, error)
	// Create inserts t; returns domain.ErrDuplicateToken on a hash collision.
	Create(ctx context.Context, t *domain.RefreshToken) error
	// Revoke atomically flips the token identified by value from active to revoked,
	// recording the hash of replacedBy when non-empty. It returns domain.ErrAlreadyRevoked
	// when no unrevoked token matched, so of two concurrent callers exactly one succeeds.
	Revoke(ctx context.Context, value, replacedBy string) error
	// Rotate revokes the token identified by oldValue and inserts next in one transaction.
	// Either both changes are committed or neither is. It returns domain.ErrAlreadyRevoked
	// when no unrevoked token matched oldValue.
	Rotate(ctx context.Context, oldValue string, next *domain.RefreshToken) error
}
