package interceptors

import (
	"context"

	"eventflow/auth-service/internal/security"
)

type contextKey struct{ name string }

var (
	claimsKey      = contextKey{"claims"}
	accessTokenKey = contextKey{"access_token"}
	requestIDKey   = contextKey{"request_id"}
)

// WithIdentity returns a context carrying the validated access-token claims and the raw token.
// Handlers read them via GetClaims, GetUserID and GetAccessToken.
func WithIdentity(ctx context.Context, claims *security.AccessClaims, token string) context.Context {
	ctx = context.WithValue(ctx, claimsKey, claims)
	ctx = context.WithValue(ctx, accessTokenKey, token)
	return ctx
}

// GetClaims returns the caller's claims and true if the request was authenticated.
func GetClaims(ctx context.Context) (*security.AccessClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*security.AccessClaims)
	return c, ok && c != nil
}

// GetUserID returns the caller's user id (the sub claim) and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	c, ok := GetClaims(ctx)
	if !ok || c.Subject == "" {
		return "", false
	}
	return c.Subject, true
}

// GetAccessToken returns the raw Bearer token the request was authenticated with.
func GetAccessToken(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(accessTokenKey).(string)
	return v, ok && v != ""
}

// WithRequestID returns a context carrying the correlation id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the correlation id and true if set.
func GetRequestID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey).(string)
	return v, ok && v != ""
}
