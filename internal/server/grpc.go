package server

import (
	"context"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	adminv1 "eventflow/auth-service/api/admin/v1"
	authv1 "eventflow/auth-service/api/auth/v1"
	adminhandler "eventflow/auth-service/internal/admin/handler"
	"eventflow/auth-service/internal/audit"
	auditrepo "eventflow/auth-service/internal/audit/repository"
	healthhandler "eventflow/auth-service/internal/health/handler"
	identityhandler "eventflow/auth-service/internal/identity/handler"
	identityservice "eventflow/auth-service/internal/identity/service"
	"eventflow/auth-service/internal/policy/engine"
	"eventflow/auth-service/internal/ratelimit"
	"eventflow/auth-service/internal/server/interceptors"
	"eventflow/auth-service/internal/telemetry"
)

// Deps holds optional service dependencies for gRPC handlers.
type Deps struct {
	// Auth is the auth service for Register/Login/Refresh/Revoke and admin deactivation. If nil, those RPCs return Unimplemented.
	Auth *identityservice.AuthService
	// AuditRepo backs AdminService.ListAuditLogs. If nil, ListAuditLogs returns Unimplemented.
	AuditRepo auditrepo.Repository
	// HealthPinger is used by the health service for readiness (e.g. *sql.DB). If nil, the DB ping is skipped.
	HealthPinger healthhandler.Pinger
	// HealthCache is the revocation cache ping (e.g. *revocation.RedisCache). If nil, it is skipped.
	HealthCache healthhandler.CachePinger
	// HealthPolicyChecker is used for readiness (e.g. the OPA authorizer). If nil, the policy check is skipped.
	HealthPolicyChecker healthhandler.PolicyChecker
	Log                 *zap.Logger
}

// RegisterServices registers all gRPC services with the given server and returns the health
// server so the REST gateway can share its readiness check.
//
// Service → handler mapping:
//   - AuthService        → internal/identity/handler
//   - AdminService       → internal/admin/handler
//   - grpc.health.v1     → internal/health/handler
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) *healthhandler.Server {
	var (
		auth  identityhandler.AuthService
		users adminhandler.UserDeactivator
	)
	if deps.Auth != nil {
		auth = deps.Auth
		users = deps.Auth
	}
	authv1.RegisterAuthServiceServer(s, identityhandler.NewAuthServer(auth, deps.Log))
	adminv1.RegisterAdminServiceServer(s, adminhandler.NewServer(users, deps.AuditRepo, deps.Log))
	health := healthhandler.NewServer(deps.HealthPinger, deps.HealthCache, deps.HealthPolicyChecker, deps.Log)
	healthpb.RegisterHealthServer(s, health)
	return health
}

// ChainOptions configures the unary interceptor chain. Nil members disable their interceptor's effect.
type ChainOptions struct {
	Log        *zap.Logger
	Validator  interceptors.TokenValidator
	Authorizer engine.Authorizer
	Limiter    *ratelimit.Limiter
	ClientIP   func(context.Context) string
	Audit      audit.AuditLogger
	Events     telemetry.EventEmitter
}

// UnaryInterceptors returns the server chain in order: request id, recovery, logging, rate limit,
// authentication, authorization, audit, events. Audit and events run innermost so they see the
// authenticated identity.
func UnaryInterceptors(o ChainOptions) []grpc.UnaryServerInterceptor {
	return []grpc.UnaryServerInterceptor{
		interceptors.RequestIDUnary(),
		interceptors.RecoveryUnary(o.Log),
		interceptors.LoggingUnary(o.Log, HealthMethods()),
		interceptors.RateLimitUnary(o.Limiter, RateLimitedMethods(), o.ClientIP),
		interceptors.AuthUnary(o.Validator, PublicMethods()),
		interceptors.AuthzUnary(o.Authorizer, o.Log),
		interceptors.AuditUnary(o.Audit, AuditSkipMethods()),
		interceptors.EventsUnary(o.Events, EventMethods(), o.Log),
	}
}

// HealthMethods are the grpc.health.v1 RPCs.
func HealthMethods() map[string]bool {
	return map[string]bool{
		healthpb.Health_Check_FullMethodName: true,
		healthpb.Health_Watch_FullMethodName: true,
	}
}

// PublicMethods do not require a Bearer token.
func PublicMethods() map[string]bool {
	m := HealthMethods()
	m[authv1.AuthService_Register_FullMethodName] = true
	m[authv1.AuthService_Login_FullMethodName] = true
	m[authv1.AuthService_Refresh_FullMethodName] = true
	return m
}

// RateLimitedMethods are throttled per client IP.
func RateLimitedMethods() map[string]bool {
	return map[string]bool{
		authv1.AuthService_Register_FullMethodName: true,
		authv1.AuthService_Login_FullMethodName:    true,
	}
}

// AuditSkipMethods are not written to the audit log.
func AuditSkipMethods() map[string]bool {
	m := HealthMethods()
	m[authv1.AuthService_Me_FullMethodName] = true
	m[adminv1.AdminService_ListAuditLogs_FullMethodName] = true
	return m
}

// EventMethods publish an auth event after each call.
func EventMethods() map[string]bool {
	return map[string]bool{
		authv1.AuthService_Register_FullMethodName:          true,
		authv1.AuthService_Login_FullMethodName:             true,
		authv1.AuthService_Refresh_FullMethodName:           true,
		authv1.AuthService_Revoke_FullMethodName:            true,
		authv1.AuthService_RevokeAccessToken_FullMethodName: true,
		adminv1.AdminService_DeactivateUser_FullMethodName:  true,
	}
}

// AdminMethods are restricted to the admin role by the authorization policy.
func AdminMethods() []string {
	return []string{
		adminv1.AdminService_DeactivateUser_FullMethodName,
		adminv1.AdminService_ListAuditLogs_FullMethodName,
	}
}
