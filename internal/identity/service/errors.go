package service

import (
	"errors"
	"fmt"
)

// Sentinel errors for the auth service; handlers map them to transport codes via Kind.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrDefaultRoleMissing     = errors.New("default role is not configured")
	// ErrInvalidCredentials is the single error for every Login failure so callers cannot
	// tell an unknown email from a wrong password or a disabled account.
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	ErrTokenAlreadyRevoked = errors.New("token is already revoked or expired")
	ErrUserNotFound        = errors.New("user not found")
	// ErrUnavailable wraps store, cache and deadline failures. Not retried internally.
	ErrUnavailable = errors.New("service temporarily unavailable")
)

// ValidationError reports malformed input on a named field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ErrorKind classifies service errors for transport mapping.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindInvalidArgument
	KindConflict
	KindConfiguration
	KindUnauthorized
	KindNotFound
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindConflict:
		return "conflict"
	case KindConfiguration:
		return "configuration"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Kind returns the class of err. Unknown errors are KindInternal.
func Kind(err error) ErrorKind {
	var verr *ValidationError
	switch {
	case err == nil:
		return KindInternal
	case errors.As(err, &verr):
		return KindInvalidArgument
	case errors.Is(err, ErrEmailAlreadyRegistered):
		return KindConflict
	case errors.Is(err, ErrDefaultRoleMissing):
		return KindConfiguration
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidRefreshToken),
		errors.Is(err, ErrTokenAlreadyRevoked):
		return KindUnauthorized
	case errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
