package authv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"eventflow/auth-service/api/codec"
)

const ServiceName = "eventflow.auth.v1.AuthService"

const (
	AuthService_Register_FullMethodName          = "/eventflow.auth.v1.AuthService/Register"
	AuthService_Login_FullMethodName             = "/eventflow.auth.v1.AuthService/Login"
	AuthService_Refresh_FullMethodName           = "/eventflow.auth.v1.AuthService/Refresh"
	AuthService_Revoke_FullMethodName            = "/eventflow.auth.v1.AuthService/Revoke"
	AuthService_Me_FullMethodName                = "/eventflow.auth.v1.AuthService/Me"
	AuthService_RevokeAccessToken_FullMethodName = "/eventflow.auth.v1.AuthService/RevokeAccessToken"
)

// AuthServiceServer is the server API for AuthService.
type AuthServiceServer interface {
	Register(context.Context, *RegisterRequest) (*AuthResponse, error)
	Login(context.Context, *LoginRequest) (*AuthResponse, error)
	Refresh(context.Context, *RefreshRequest) (*AuthResponse, error)
	Revoke(context.Context, *RevokeRequest) (*RevokeResponse, error)
	Me(context.Context, *MeRequest) (*MeResponse, error)
	RevokeAccessToken(context.Context, *RevokeAccessTokenRequest) (*RevokeAccessTokenResponse, error)
}

// UnimplementedAuthServiceServer returns Unimplemented for every method.
type UnimplementedAuthServiceServer struct{}

func (UnimplementedAuthServiceServer) Register(context.Context, *RegisterRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Register not implemented")
}
func (UnimplementedAuthServiceServer) Login(context.Context, *LoginRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Login not implemented")
}
func (UnimplementedAuthServiceServer) Refresh(context.Context, *RefreshRequest) (*AuthResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Refresh not implemented")
}
func (UnimplementedAuthServiceServer) Revoke(context.Context, *RevokeRequest) (*RevokeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Revoke not implemented")
}
func (UnimplementedAuthServiceServer) Me(context.Context, *MeRequest) (*MeResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Me not implemented")
}
func (UnimplementedAuthServiceServer) RevokeAccessToken(context.Context, *RevokeAccessTokenRequest) (*RevokeAccessTokenResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RevokeAccessToken not implemented")
}

// RegisterAuthServiceServer registers srv on s.
func RegisterAuthServiceServer(s grpc.ServiceRegistrar, srv AuthServiceServer) {
	s.RegisterService(&AuthService_ServiceDesc, srv)
}

// AuthService_ServiceDesc is the grpc.ServiceDesc for AuthService.
var AuthService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Register",
			Handler: codec.UnaryHandler(AuthService_Register_FullMethodName, func(srv any, ctx context.Context, req *RegisterRequest) (any, error) {
				return srv.(AuthServiceServer).Register(ctx, req)
			}),
		},
		{
			MethodName: "Login",
			Handler: codec.UnaryHandler(AuthService_Login_FullMethodName, func(srv any, ctx context.Context, req *LoginRequest) (any, error) {
				return srv.(AuthServiceServer).Login(ctx, req)
			}),
		},
		{
			MethodName: "Refresh",
			Handler: codec.UnaryHandler(AuthService_Refresh_FullMethodName, func(srv any, ctx context.Context, req *RefreshRequest) (any, error) {
				return srv.(AuthServiceServer).Refresh(ctx, req)
			}),
		},
		{
			MethodName: "Revoke",
			Handler: codec.UnaryHandler(AuthService_Revoke_FullMethodName, func(srv any, ctx context.Context, req *RevokeRequest) (any, error) {
				return srv.(AuthServiceServer).Revoke(ctx, req)
			}),
		},
		{
			MethodName: "Me",
			Handler: codec.UnaryHandler(AuthService_Me_FullMethodName, func(srv any, ctx context.Context, req *MeRequest) (any, error) {
				return srv.(AuthServiceServer).Me(ctx, req)
			}),
		},
		{
			MethodName: "RevokeAccessToken",
			Handler: codec.UnaryHandler(AuthService_RevokeAccessToken_FullMethodName, func(srv any, ctx context.Context, req *RevokeAccessTokenRequest) (any, error) {
				return srv.(AuthServiceServer).RevokeAccessToken(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "auth/v1/auth.proto",
}

// AuthServiceClient is the client API for AuthService.
type AuthServiceClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*AuthResponse, error)
	Revoke(ctx context.Context, in *RevokeRequest, opts ...grpc.CallOption) (*RevokeResponse, error)
	Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error)
	RevokeAccessToken(ctx context.Context, in *RevokeAccessTokenRequest, opts ...grpc.CallOption) (*RevokeAccessTokenResponse, error)
}

type authServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAuthServiceClient returns a client that speaks the JSON content-subtype.
func NewAuthServiceClient(cc grpc.ClientConnInterface) AuthServiceClient {
	return &authServiceClient{cc: cc}
}

func (c *authServiceClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return codec.Invoke[AuthResponse](ctx, c.cc, AuthService_Register_FullMethodName, in, opts...)
}

func (c *authServiceClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return codec.Invoke[AuthResponse](ctx, c.cc, AuthService_Login_FullMethodName, in, opts...)
}

func (c *authServiceClient) Refresh(ctx context.Context, in *RefreshRequest, opts ...grpc.CallOption) (*AuthResponse, error) {
	return codec.Invoke[AuthResponse](ctx, c.cc, AuthService_Refresh_FullMethodName, in, opts...)
}

func (c *authServiceClient) Revoke(ctx context.Context, in *RevokeRequest, opts ...grpc.CallOption) (*RevokeResponse, error) {
	return codec.Invoke[RevokeResponse](ctx, c.cc, AuthService_Revoke_FullMethodName, in, opts...)
}

func (c *authServiceClient) Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*MeResponse, error) {
	return codec.Invoke[MeResponse](ctx, c.cc, AuthService_Me_FullMethodName, in, opts...)
}

func (c *authServiceClient) RevokeAccessToken(ctx context.Context, in *RevokeAccessTokenRequest, opts ...grpc.CallOption) (*RevokeAccessTokenResponse, error) {
	return codec.Invoke[RevokeAccessTokenResponse](ctx, c.cc, AuthService_RevokeAccessToken_FullMethodName, in, opts...)
}
