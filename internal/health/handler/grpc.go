package handler

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	authv1 "eventflow/auth-service/api/auth/v1"
)

// Pinger checks database connectivity; implemented by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CachePinger checks revocation cache connectivity; implemented by *revocation.RedisCache.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// PolicyChecker checks that the authorization policy evaluates; implemented by *engine.OPAAuthorizer.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server implements grpc.health.v1.Health for readiness probes.
// The overall service ("") and AuthService report SERVING only when every configured dependency answers.
type Server struct {
	healthpb.UnimplementedHealthServer
	db     Pinger
	cache  CachePinger
	policy PolicyChecker
	log    *zap.Logger
}

// NewServer returns a new Health gRPC server. Nil dependencies are skipped.
func NewServer(db Pinger, cache CachePinger, policy PolicyChecker, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{db: db, cache: cache, policy: policy, log: log}
}

// Ready returns the first dependency failure, or nil when all are reachable.
func (s *Server) Ready(ctx context.Context) error {
	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			return fmt.Errorf("revocation cache: %w", err)
		}
	}
	if s.policy != nil {
		if err := s.policy.HealthCheck(ctx); err != nil {
			return fmt.Errorf("policy: %w", err)
		}
	}
	return nil
}

// Check reports the serving status. Dependency failures are NOT_SERVING, never a gRPC error.
func (s *Server) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", authv1.ServiceName:
	default:
		return nil, status.Error(codes.NotFound, "unknown service")
	}
	if err := s.Ready(ctx); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}
