package revocation

import (
	"context"
	"errors"

	"eventflow/auth-service/internal/security"
)

// ErrRevoked is returned for a well-formed access token whose jti is blacklisted.
var ErrRevoked = errors.New("access token revoked")

// AccessValidator verifies access tokens statelessly; implemented by *security.TokenProvider.
type AccessValidator interface {
	ValidateAccess(token string) (*security.AccessClaims, error)
}

// Validator is the full access-token check used by this service's interceptors and
// by downstream services: signature, issuer, audience and expiry, then the blacklist.
type Validator struct {
	tokens AccessValidator
	cache  Cache
}

// NewValidator returns a Validator. cache may be nil to skip the blacklist (tests only).
func NewValidator(tokens AccessValidator, cache Cache) *Validator {
	return &Validator{tokens: tokens, cache: cache}
}

// ValidateAccessToken returns the claims of a valid, non-revoked token.
// Errors: security.ErrInvalidToken, ErrRevoked, or ErrCacheUnavailable (fail closed).
func (v *Validator) ValidateAccessToken(ctx context.Context, token string) (*security.AccessClaims, error) {
	claims, err := v.tokens.ValidateAccess(token)
	if err != nil {
		return nil, err
	}
	if v.cache == nil {
		return claims, nil
	}
	revoked, err := v.cache.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}
	return claims, nil
}
