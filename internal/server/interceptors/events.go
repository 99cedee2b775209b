package interceptors

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"eventflow/auth-service/internal/audit"
	"eventflow/auth-service/internal/telemetry"
	"eventflow/auth-service/internal/telemetry/domain"
)

// EventsUnary publishes an AuthEvent after each RPC in methods (Kafka and OTel logs via emitter).
// Emission is asynchronous and best-effort. A nil emitter disables the interceptor.
func EventsUnary(emitter telemetry.EventEmitter, methods map[string]bool, log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if emitter == nil || !methods[info.FullMethod] {
			return resp, err
		}
		ar := audit.ParseFullMethod(info.FullMethod)
		event := domain.NewAuthEvent(ar.Resource+"."+ar.Action, outcomeOf(err), status.Code(err).String(), time.Now())
		event.UserID = subjectOf(ctx, resp)
		event.RequestID, _ = GetRequestID(ctx)
		event.ClientIP = ClientIP(ctx)
		telemetry.EmitAsync(log, emitter, event)
		return resp, err
	}
}
