package interceptors

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"eventflow/auth-service/internal/policy/engine"
)

// AuthzUnary asks the policy engine whether the authenticated caller may invoke the method.
// Unauthenticated calls (public methods) are passed through; AuthUnary has already rejected
// anonymous calls to protected methods. Evaluation errors deny the call.
func AuthzUnary(authorizer engine.Authorizer, log *zap.Logger) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		claims, ok := GetClaims(ctx)
		if authorizer == nil || !ok {
			return handler(ctx, req)
		}
		allowed, err := authorizer.Authorize(ctx, engine.Input{
			Method: info.FullMethod,
			UserID: claims.Subject,
			Role:   claims.Role,
		})
		if err != nil {
			log.Error("authz: policy evaluation failed", zap.String("method", info.FullMethod), zap.Error(err))
			return nil, status.Error(codes.PermissionDenied, "permission denied")
		}
		if !allowed {
			return nil, status.Error(codes.PermissionDenied, "permission denied")
		}
		return handler(ctx, req)
	}
}
