package interceptors

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// LoggingUnary logs one line per RPC. Server-side failures log at Error, client errors at Warn.
// skipMethods (e.g. health checks) are not logged.
func LoggingUnary(log *zap.Logger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	if log == nil {
		log = zap.NewNop()
	}
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if skipMethods[info.FullMethod] {
			return resp, err
		}
		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", ClientIP(ctx)),
		}
		if id, ok := GetRequestID(ctx); ok {
			fields = append(fields, zap.String("request_id", id))
		}
		if uid, ok := GetUserID(ctx); ok {
			fields = append(fields, zap.String("user_id", uid))
		}
		switch code {
		case codes.OK:
			log.Info("grpc_request", fields...)
		case codes.Internal, codes.Unknown, codes.Unavailable, codes.DataLoss, codes.DeadlineExceeded:
			log.Error("grpc_request", append(fields, zap.Error(err))...)
		default:
			log.Warn("grpc_request", fields...)
		}
		return resp, err
	}
}
