package handler

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	adminv1 "eventflow/auth-service/api/admin/v1"
	auditrepo "eventflow/auth-service/internal/audit/repository"
	identityhandler "eventflow/auth-service/internal/identity/handler"
	"eventflow/auth-service/internal/identity/service"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// UserDeactivator disables accounts; implemented by *service.AuthService.
type UserDeactivator interface {
	DeactivateUser(ctx context.Context, userID string) error
}

// Server implements AdminService (gRPC) for account administration and audit review.
// api/admin/v1 → internal/admin/handler. Access is restricted to the admin role by the authz interceptor.
type Server struct {
	adminv1.UnimplementedAdminServiceServer
	users UserDeactivator
	audit auditrepo.Repository
	log   *zap.Logger
}

// NewServer returns a new Admin gRPC server. Nil dependencies make the matching RPCs return Unimplemented.
func NewServer(users UserDeactivator, audit auditrepo.Repository, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{users: users, audit: audit, log: log}
}

// DeactivateUser disables the user so later Login and Refresh calls fail.
func (s *Server) DeactivateUser(ctx context.Context, req *adminv1.DeactivateUserRequest) (*adminv1.DeactivateUserResponse, error) {
	if s.users == nil {
		return nil, status.Error(codes.Unimplemented, "method DeactivateUser not implemented")
	}
	if err := s.users.DeactivateUser(ctx, strings.TrimSpace(req.UserID)); err != nil {
		return nil, identityhandler.ToStatus(err)
	}
	return &adminv1.DeactivateUserResponse{}, nil
}

// ListAuditLogs returns one page of audit entries, newest first.
// NextOffset is zero when there are no further pages.
func (s *Server) ListAuditLogs(ctx context.Context, req *adminv1.ListAuditLogsRequest) (*adminv1.ListAuditLogsResponse, error) {
	if s.audit == nil {
		return nil, status.Error(codes.Unimplemented, "method ListAuditLogs not implemented")
	}
	if req.Offset < 0 {
		return nil, status.Error(codes.InvalidArgument, "offset must not be negative")
	}
	size := req.PageSize
	switch {
	case size <= 0:
		size = defaultPageSize
	case size > maxPageSize:
		size = maxPageSize
	}

	logs, err := s.audit.ListByUser(ctx, strings.TrimSpace(req.UserID), size, req.Offset)
	if err != nil {
		s.log.Error("list audit logs", zap.Error(err))
		return nil, status.Error(codes.Unavailable, service.ErrUnavailable.Error())
	}

	resp := &adminv1.ListAuditLogsResponse{Logs: make([]*adminv1.AuditLog, 0, len(logs))}
	for _, l := range logs {
		resp.Logs = append(resp.Logs, &adminv1.AuditLog{
			ID:        l.ID,
			UserID:    l.UserID,
			Action:    l.Action,
			Resource:  l.Resource,
			Outcome:   l.Outcome,
			IP:        l.IP,
			Metadata:  l.Metadata,
			CreatedAt: l.CreatedAt.UTC(),
		})
	}
	if int32(len(logs)) == size {
		resp.NextOffset = req.Offset + size
	}
	return resp, nil
}
