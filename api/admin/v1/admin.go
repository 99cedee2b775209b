// Package adminv1 defines the EventFlow AdminService wire messages and gRPC bindings.
package adminv1

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"eventflow/auth-service/api/codec"
)

const (
	AdminService_DeactivateUser_FullMethodName = "/eventflow.admin.v1.AdminService/DeactivateUser"
	AdminService_ListAuditLogs_FullMethodName  = "/eventflow.admin.v1.AdminService/ListAuditLogs"
)

type DeactivateUserRequest struct {
	UserID string `json:"userId"`
}

type DeactivateUserResponse struct{}

// ListAuditLogsRequest pages through audit entries, newest first. An empty UserID lists all users.
type ListAuditLogsRequest struct {
	UserID   string `json:"userId,omitempty"`
	PageSize int32  `json:"pageSize"`
	Offset   int32  `json:"offset"`
}

type AuditLog struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	Outcome   string    `json:"outcome"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ListAuditLogsResponse struct {
	Logs       []*AuditLog `json:"logs"`
	NextOffset int32       `json:"nextOffset"`
}

// AdminServiceServer is the server API for AdminService.
type AdminServiceServer interface {
	DeactivateUser(context.Context, *DeactivateUserRequest) (*DeactivateUserResponse, error)
	ListAuditLogs(context.Context, *ListAuditLogsRequest) (*ListAuditLogsResponse, error)
}

// UnimplementedAdminServiceServer returns Unimplemented for every method.
type UnimplementedAdminServiceServer struct{}

func (UnimplementedAdminServiceServer) DeactivateUser(context.Context, *DeactivateUserRequest) (*DeactivateUserResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method DeactivateUser not implemented")
}

func (UnimplementedAdminServiceServer) ListAuditLogs(context.Context, *ListAuditLogsRequest) (*ListAuditLogsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAuditLogs not implemented")
}

// RegisterAdminServiceServer registers srv on s.
func RegisterAdminServiceServer(s grpc.ServiceRegistrar, srv AdminServiceServer) {
	s.RegisterService(&AdminService_ServiceDesc, srv)
}

// AdminService_ServiceDesc is the grpc.ServiceDesc for AdminService.
var AdminService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "eventflow.admin.v1.AdminService",
	HandlerType: (*AdminServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "DeactivateUser",
			Handler: codec.UnaryHandler(AdminService_DeactivateUser_FullMethodName, func(srv any, ctx context.Context, req *DeactivateUserRequest) (any, error) {
				return srv.(AdminServiceServer).DeactivateUser(ctx, req)
			}),
		},
		{
			MethodName: "ListAuditLogs",
			Handler: codec.UnaryHandler(AdminService_ListAuditLogs_FullMethodName, func(srv any, ctx context.Context, req *ListAuditLogsRequest) (any, error) {
				return srv.(AdminServiceServer).ListAuditLogs(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "admin/v1/admin.proto",
}

// AdminServiceClient is the client API for AdminService.
type AdminServiceClient interface {
	DeactivateUser(ctx context.Context, in *DeactivateUserRequest, opts ...grpc.CallOption) (*DeactivateUserResponse, error)
	ListAuditLogs(ctx context.Context, in *ListAuditLogsRequest, opts ...grpc.CallOption) (*ListAuditLogsResponse, error)
}

type adminServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAdminServiceClient returns a client that speaks the JSON content-subtype.
func NewAdminServiceClient(cc grpc.ClientConnInterface) AdminServiceClient {
	return &adminServiceClient{cc: cc}
}

func (c *adminServiceClient) DeactivateUser(ctx context.Context, in *DeactivateUserRequest, opts ...grpc.CallOption) (*DeactivateUserResponse, error) {
	return codec.Invoke[DeactivateUserResponse](ctx, c.cc, AdminService_DeactivateUser_FullMethodName, in, opts...)
}

func (c *adminServiceClient) ListAuditLogs(ctx context.Context, in *ListAuditLogsRequest, opts ...grpc.CallOption) (*ListAuditLogsResponse, error) {
	return codec.Invoke[ListAuditLogsResponse](ctx, c.cc, AdminService_ListAuditLogs_FullMethodName, in, opts...)
}
