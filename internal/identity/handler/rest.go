package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	authv1 "eventflow/auth-service/api/auth/v1"
	"eventflow/auth-service/internal/ratelimit"
	"eventflow/auth-service/internal/server/interceptors"
)

const (
	correlationIDHeader = "X-Correlation-Id"
	requestIDKey        = "request_id"
	readyTimeout        = 2 * time.Second
)

// APIResponse is the envelope of every REST reply.
type APIResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// ReadinessFunc reports whether the service's dependencies are reachable.
type ReadinessFunc func(ctx context.Context) error

// RESTOptions configures the REST gateway.
type RESTOptions struct {
	Limiter *ratelimit.Limiter // per client IP; nil disables
	// TrustedProxies are the IPs or CIDRs allowed to set X-Forwarded-For. Empty trusts none.
	TrustedProxies []string
	Ready          ReadinessFunc // nil means always ready
	Log            *zap.Logger
}

// RESTGateway serves /api/auth/* by calling the gRPC AuthService, so REST traffic passes through
// the same interceptor chain as native gRPC clients.
type RESTGateway struct {
	client authv1.AuthServiceClient
	ready  ReadinessFunc
	log    *zap.Logger
}

// NewRouter builds the gin engine for the REST gateway.
func NewRouter(client authv1.AuthServiceClient, opts RESTOptions) *gin.Engine {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	g := &RESTGateway{client: client, ready: opts.Ready, log: log}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		log.Warn("invalid trusted proxies, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), RequestID(), SecureHeaders(), RequestLogger(log))

	r.GET("/health/live", g.live)
	r.GET("/health/ready", g.readyz)

	api := r.Group("/api/auth", RateLimit(opts.Limiter))
	api.POST("/register", g.register)
	api.POST("/login", g.login)
	api.POST("/refresh", g.refresh)
	api.POST("/revoke", g.revoke)
	api.POST("/revoke-access-token", g.revokeAccessToken)
	api.GET("/me", g.me)
	return r
}

func (g *RESTGateway) register(c *gin.Context) {
	var req authv1.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := g.client.Register(outgoingContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, APIResponse{Success: true, Message: "Registration successful", Data: resp})
}

func (g *RESTGateway) login(c *gin.Context) {
	var req authv1.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := g.client.Login(outgoingContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Message: "Login successful", Data: resp})
}

func (g *RESTGateway) refresh(c *gin.Context) {
	var req authv1.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := g.client.Refresh(outgoingContext(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Message: "Token refreshed", Data: resp})
}

func (g *RESTGateway) revoke(c *gin.Context) {
	var req authv1.RevokeRequest
	if !bindJSON(c, &req) {
		return
	}
	if _, err := g.client.Revoke(outgoingContext(c), &req); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (g *RESTGateway) revokeAccessToken(c *gin.Context) {
	if _, err := g.client.RevokeAccessToken(outgoingContext(c), &authv1.RevokeAccessTokenRequest{}); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (g *RESTGateway) me(c *gin.Context) {
	resp, err := g.client.Me(outgoingContext(c), &authv1.MeRequest{})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: resp})
}

func (g *RESTGateway) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (g *RESTGateway) readyz(c *gin.Context) {
	if g.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()
		if err := g.ready(ctx); err != nil {
			g.log.Warn("readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, APIResponse{Message: "Invalid payload", Errors: []string{"request body must be a JSON object"}})
		return false
	}
	return true
}

// outgoingContext forwards the caller's credentials, request id and address to the gRPC service.
func outgoingContext(c *gin.Context) context.Context {
	md := metadata.MD{}
	if auth := c.GetHeader("Authorization"); auth != "" {
		md.Set("authorization", auth)
	}
	if id := c.GetString(requestIDKey); id != "" {
		md.Set(interceptors.RequestIDHeader, id)
	}
	md.Set("x-forwarded-for", c.ClientIP())
	return metadata.NewOutgoingContext(c.Request.Context(), md)
}

func respondError(c *gin.Context, err error) {
	st, _ := status.FromError(err)
	code := httpStatus(st.Code())
	msg := st.Message()
	if code == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(code, APIResponse{Message: msg, Errors: []string{msg}})
}

func httpStatus(code codes.Code) int {
	switch code {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.AlreadyExists:
		return http.StatusConflict
	case codes.Unauthenticated:
		return http.StatusUnauthorized
	case codes.PermissionDenied:
		return http.StatusForbidden
	case codes.NotFound:
		return http.StatusNotFound
	case codes.ResourceExhausted:
		return http.StatusTooManyRequests
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable
	case codes.Unimplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// RequestID reuses X-Request-ID or X-Correlation-Id from the caller, or generates one,
// and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" {
			id = strings.TrimSpace(c.GetHeader(correlationIDHeader))
		}
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Writer.Header().Set(correlationIDHeader, id)
		c.Next()
	}
}

// SecureHeaders sets browser hardening headers on every response.
func SecureHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Cache-Control", "no-store")
		c.Next()
	}
}

// RateLimit throttles per client IP. A nil limiter lets everything through.
func RateLimit(l *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, APIResponse{
				Message: "Too many requests. Please slow down.",
				Errors:  []string{"rate limited"},
			})
			return
		}
		c.Next()
	}
}

// RequestLogger logs each HTTP request with status, latency and request id.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		code := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Int("status", code),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		switch {
		case code >= 500:
			log.Error("http_request", fields...)
		case code >= 400:
			log.Warn("http_request", fields...)
		default:
			log.Info("http_request", fields...)
		}
	}
}
