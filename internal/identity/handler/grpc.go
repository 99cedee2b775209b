package handler

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	authv1 "eventflow/auth-service/api/auth/v1"
	"eventflow/auth-service/internal/identity/service"
	"eventflow/auth-service/internal/security"
	"eventflow/auth-service/internal/server/interceptors"
)

// AuthService is the subset of *service.AuthService used by the transport layer.
type AuthService interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*service.AuthResult, error)
	Login(ctx context.Context, email, password string) (*service.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*service.AuthResult, error)
	Revoke(ctx context.Context, refreshToken string) error
	RevokeAccessToken(ctx context.Context, claims *security.AccessClaims) error
}

// AuthServer implements AuthService (gRPC) for register, login, refresh rotation and revocation.
// api/auth/v1 → internal/identity/handler.
type AuthServer struct {
	authv1.UnimplementedAuthServiceServer
	auth AuthService
	log  *zap.Logger
}

// NewAuthServer returns a new Auth gRPC server. If auth is nil, all RPCs return Unimplemented.
func NewAuthServer(auth AuthService, log *zap.Logger) *AuthServer {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServer{auth: auth, log: log}
}

// Register creates an account with the default role and returns its first token pair.
func (s *AuthServer) Register(ctx context.Context, req *authv1.RegisterRequest) (*authv1.AuthResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Register not implemented")
	}
	res, err := s.auth.Register(ctx, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return nil, ToStatus(err)
	}
	return authResponse(res), nil
}

// Login exchanges email and password for a token pair.
func (s *AuthServer) Login(ctx context.Context, req *authv1.LoginRequest) (*authv1.AuthResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Login not implemented")
	}
	res, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, ToStatus(err)
	}
	return authResponse(res), nil
}

// Refresh rotates a refresh token: the presented one is revoked and a new pair is returned.
func (s *AuthServer) Refresh(ctx context.Context, req *authv1.RefreshRequest) (*authv1.AuthResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Refresh not implemented")
	}
	res, err := s.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return nil, ToStatus(err)
	}
	return authResponse(res), nil
}

// Revoke logs out: the refresh token is revoked and the caller's access token is blacklisted.
// Blacklisting is best-effort once the refresh token is gone.
func (s *AuthServer) Revoke(ctx context.Context, req *authv1.RevokeRequest) (*authv1.RevokeResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method Revoke not implemented")
	}
	if err := s.auth.Revoke(ctx, req.RefreshToken); err != nil {
		return nil, ToStatus(err)
	}
	if claims, ok := interceptors.GetClaims(ctx); ok {
		if err := s.auth.RevokeAccessToken(ctx, claims); err != nil {
			s.log.Warn("revoke: access token not blacklisted",
				zap.String("user_id", claims.Subject),
				zap.String("jti", claims.ID),
				zap.Error(err))
		}
	}
	return &authv1.RevokeResponse{}, nil
}

// RevokeAccessToken blacklists the caller's current access token until it expires.
func (s *AuthServer) RevokeAccessToken(ctx context.Context, req *authv1.RevokeAccessTokenRequest) (*authv1.RevokeAccessTokenResponse, error) {
	if s.auth == nil {
		return nil, status.Error(codes.Unimplemented, "method RevokeAccessToken not implemented")
	}
	claims, ok := interceptors.GetClaims(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
	}
	if err := s.auth.RevokeAccessToken(ctx, claims); err != nil {
		return nil, ToStatus(err)
	}
	return &authv1.RevokeAccessTokenResponse{}, nil
}

// Me describes the caller from the validated access token; it does not touch the user store.
func (s *AuthServer) Me(ctx context.Context, req *authv1.MeRequest) (*authv1.MeResponse, error) {
	claims, ok := interceptors.GetClaims(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time.UTC()
	}
	return &authv1.MeResponse{
		UserID:    claims.Subject,
		Email:     claims.Email,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: exp,
	}, nil
}

func authResponse(res *service.AuthResult) *authv1.AuthResponse {
	return &authv1.AuthResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		TokenType:    authv1.TokenTypeBearer,
		ExpiresAt:    res.ExpiresAt.UTC(),
		User: &authv1.User{
			ID:        res.User.ID,
			Email:     res.User.Email,
			FirstName: res.User.FirstName,
			LastName:  res.User.LastName,
			Role:      res.User.Role,
		},
	}
}
