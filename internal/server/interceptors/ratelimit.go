package interceptors

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"eventflow/auth-service/internal/ratelimit"
)

// RateLimitUnary throttles the given methods per client address as reported by clientIP
// (ClientIP when nil). A nil limiter disables throttling.
func RateLimitUnary(limiter *ratelimit.Limiter, methods map[string]bool, clientIP func(context.Context) string) grpc.UnaryServerInterceptor {
	if clientIP == nil {
		clientIP = ClientIP
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if methods[info.FullMethod] && !limiter.Allow(clientIP(ctx)) {
			return nil, status.Error(codes.ResourceExhausted, "too many requests, please slow down")
		}
		return handler(ctx, req)
	}
}
