package interceptors

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// RequestIDHeader is the metadata key (and HTTP header, case-insensitively) carrying the correlation id.
const RequestIDHeader = "x-request-id"

const maxRequestIDLen = 128

// RequestIDUnary propagates the caller's x-request-id, or generates one, into the context and the response header.
func RequestIDUnary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		id := incomingRequestID(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		ctx = WithRequestID(ctx, id)
		// SetHeader fails only outside a real server stream (unit tests); the id is still in ctx.
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, id))
		return handler(ctx, req)
	}
}

func incomingRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	vals := md.Get(RequestIDHeader)
	if len(vals) == 0 {
		return ""
	}
	id := strings.TrimSpace(vals[0])
	if len(id) > maxRequestIDLen {
		return ""
	}
	return id
}
