package interceptors

import (
	"context"
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"eventflow/auth-service/internal/audit"
	"eventflow/auth-service/internal/audit/domain"
)

// subjectResponse is implemented by responses that identify the user a call authenticated (e.g. Login).
type subjectResponse interface {
	GetUserId() string
}

// auditMetadata is the JSON shape stored in AuditLog.Metadata.
type auditMetadata struct {
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// AuditUnary returns a unary server interceptor that records an audit log entry after each RPC,
// including failed ones. skipMethods is the set of full method names to not audit (health, Me).
// The user is taken from the authenticated context, or from the response for Register, Login
// and Refresh. Logging is best-effort: failures do not fail the RPC.
func AuditUnary(logger audit.AuditLogger, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if logger == nil || skipMethods[info.FullMethod] {
			return resp, err
		}
		ar := audit.ParseFullMethod(info.FullMethod)
		requestID, _ := GetRequestID(ctx)
		meta, _ := json.Marshal(auditMetadata{Code: status.Code(err).String(), RequestID: requestID})
		logger.LogEvent(ctx, subjectOf(ctx, resp), ar.Action, ar.Resource, outcomeOf(err), string(meta))
		return resp, err
	}
}

func subjectOf(ctx context.Context, resp interface{}) string {
	if uid, ok := GetUserID(ctx); ok {
		return uid
	}
	if r, ok := resp.(subjectResponse); ok {
		return r.GetUserId()
	}
	return ""
}

func outcomeOf(err error) string {
	if err != nil {
		return domain.OutcomeFailure
	}
	return domain.OutcomeSuccess
}
