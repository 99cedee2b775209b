package handler

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"eventflow/auth-service/internal/identity/service"
)

// ToStatus maps an auth service error to a gRPC status. Store and cache details are not exposed.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	switch service.Kind(err) {
	case service.KindInvalidArgument:
		return status.Error(codes.InvalidArgument, err.Error())
	case service.KindConflict:
		return status.Error(codes.AlreadyExists, err.Error())
	case service.KindConfiguration:
		return status.Error(codes.FailedPrecondition, err.Error())
	case service.KindUnauthorized:
		return status.Error(codes.Unauthenticated, err.Error())
	case service.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case service.KindUnavailable:
		return status.Error(codes.Unavailable, service.ErrUnavailable.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
