package interceptors

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"eventflow/auth-service/internal/revocation"
	"eventflow/auth-service/internal/security"
)

const bearerPrefix = "bearer "

// TokenValidator checks an access token's signature, claims and revocation state.
// Implemented by *revocation.Validator.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*security.AccessClaims, error)
}

// AuthUnary returns a unary server interceptor that validates the Bearer access token from
// gRPC metadata and stores its claims in the context for protected RPCs.
// publicMethods is the set of full method names that do not require a Bearer token
// (AuthService Register, Login, Refresh; grpc.health.v1). A valid token on a public method
// still populates the identity; an invalid one is ignored there.
// A revocation cache outage fails protected calls with Unavailable rather than letting them through.
func AuthUnary(validator TokenValidator, publicMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		token := extractBearer(ctx)
		public := publicMethods[info.FullMethod]

		if token == "" {
			if public {
				return handler(ctx, req)
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		claims, err := validator.ValidateAccessToken(ctx, token)
		if err != nil {
			if public {
				return handler(ctx, req)
			}
			if errors.Is(err, revocation.ErrCacheUnavailable) {
				return nil, status.Error(codes.Unavailable, "token revocation check unavailable")
			}
			return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
		}

		return handler(WithIdentity(ctx, claims, token), req)
	}
}

// extractBearer returns the Bearer token from ctx metadata, or "" if missing or malformed.
func extractBearer(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get("authorization")
	if len(vals) == 0 {
		return ""
	}
	v := strings.TrimSpace(vals[0])
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}
