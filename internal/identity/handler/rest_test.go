package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	authv1 "eventflow/auth-service/api/auth/v1"
	"eventflow/auth-service/internal/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeClient struct {
	authResp *authv1.AuthResponse
	meResp   *authv1.MeResponse
	err      error

	lastMethod string
	lastMD     metadata.MD
	lastReq    any
}

func (f *fakeClient) record(ctx context.Context, method string, req any) {
	f.lastMethod = method
	f.lastReq = req
	f.lastMD, _ = metadata.FromOutgoingContext(ctx)
}

func (f *fakeClient) Register(ctx context.Context, in *authv1.RegisterRequest, _ ...grpc.CallOption) (*authv1.AuthResponse, error) {
	f.record(ctx, "Register", in)
	return f.authResp, f.err
}

func (f *fakeClient) Login(ctx context.Context, in *authv1.LoginRequest, _ ...grpc.CallOption) (*authv1.AuthResponse, error) {
	f.record(ctx, "Login", in)
	return f.authResp, f.err
}

func (f *fakeClient) Refresh(ctx context.Context, in *authv1.RefreshRequest, _ ...grpc.CallOption) (*authv1.AuthResponse, error) {
	f.record(ctx, "Refresh", in)
	return f.authResp, f.err
}

func (f *fakeClient) Revoke(ctx context.Context, in *authv1.RevokeRequest, _ ...grpc.CallOption) (*authv1.RevokeResponse, error) {
	f.record(ctx, "Revoke", in)
	if f.err != nil {
		return nil, f.err
	}
	return &authv1.RevokeResponse{}, nil
}

func (f *fakeClient) Me(ctx context.Context, in *authv1.MeRequest, _ ...grpc.CallOption) (*authv1.MeResponse, error) {
	f.record(ctx, "Me", in)
	return f.meResp, f.err
}

func (f *fakeClient) RevokeAccessToken(ctx context.Context, in *authv1.RevokeAccessTokenRequest, _ ...grpc.CallOption) (*authv1.RevokeAccessTokenResponse, error) {
	f.record(ctx, "RevokeAccessToken", in)
	if f.err != nil {
		return nil, f.err
	}
	return &authv1.RevokeAccessTokenResponse{}, nil
}

func doRequest(t *testing.T, r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestREST_ForwardedForHonouredOnlyFromTrustedProxies(t *testing.T) {
	spoofed := map[string]string{"X-Forwarded-For": "203.0.113.9"}
	body := `{"email":"a@example.com","password":"x"}`

	client := &fakeClient{authResp: &authv1.AuthResponse{AccessToken: "a"}}
	doRequest(t, NewRouter(client, RESTOptions{}), http.MethodPost, "/api/auth/login", body, spoofed)
	assert.Equal(t, []string{"192.0.2.1"}, client.lastMD.Get("x-forwarded-for"), "untrusted peer must not pick its own address")

	client = &fakeClient{authResp: &authv1.AuthResponse{AccessToken: "a"}}
	r := NewRouter(client, RESTOptions{TrustedProxies: []string{"192.0.2.0/24"}})
	doRequest(t, r, http.MethodPost, "/api/auth/login", body, spoofed)
	assert.Equal(t, []string{"203.0.113.9"}, client.lastMD.Get("x-forwarded-for"))
}

func TestREST_Register_Created(t *testing.T) {
	client := &fakeClient{authResp: &authv1.AuthResponse{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer", User: &authv1.User{ID: "u1"}}}
	r := NewRouter(client, RESTOptions{})

	w := doRequest(t, r, http.MethodPost, "/api/auth/register",
		`{"email":"a@example.com","password":"Secret123","firstName":"Ada","lastName":"Lovelace"}`, nil)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	assert.Equal(t, "a", data["accessToken"])
	assert.Equal(t, "r", data["refreshToken"])

	req := client.lastReq.(*authv1.RegisterRequest)
	assert.Equal(t, "a@example.com", req.Email)
	assert.Equal(t, "Ada", req.FirstName)
}

func TestREST_Login_ForwardsMetadata(t *testing.T) {
	client := &fakeClient{authResp: &authv1.AuthResponse{AccessToken: "a"}}
	r := NewRouter(client, RESTOptions{})

	w := doRequest(t, r, http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"x"}`,
		map[string]string{"Authorization": "Bearer tok", "X-Correlation-Id": "corr-1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "corr-1", w.Header().Get("X-Request-ID"))
	assert.Equal(t, []string{"Bearer tok"}, client.lastMD.Get("authorization"))
	assert.Equal(t, []string{"corr-1"}, client.lastMD.Get("x-request-id"))
	assert.Len(t, client.lastMD.Get("x-forwarded-for"), 1)
}

func TestREST_RequestIDGenerated(t *testing.T) {
	client := &fakeClient{meResp: &authv1.MeResponse{UserID: "u1"}}
	r := NewRouter(client, RESTOptions{})

	w := doRequest(t, r, http.MethodGet, "/api/auth/me", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, id)
	assert.Equal(t, []string{id}, client.lastMD.Get("x-request-id"))
}

func TestREST_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
		msg  string
	}{
		{"invalid", status.Error(codes.InvalidArgument, "email: email is required"), http.StatusBadRequest, "email: email is required"},
		{"conflict", status.Error(codes.AlreadyExists, "email already registered"), http.StatusConflict, "email already registered"},
		{"unauthenticated", status.Error(codes.Unauthenticated, "invalid email or password"), http.StatusUnauthorized, "invalid email or password"},
		{"forbidden", status.Error(codes.PermissionDenied, "permission denied"), http.StatusForbidden, "permission denied"},
		{"throttled", status.Error(codes.ResourceExhausted, "too many requests"), http.StatusTooManyRequests, "too many requests"},
		{"unavailable", status.Error(codes.Unavailable, "service temporarily unavailable"), http.StatusServiceUnavailable, "service temporarily unavailable"},
		{"misconfigured", status.Error(codes.FailedPrecondition, "default role is not configured"), http.StatusInternalServerError, "internal error"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(&fakeClient{err: tt.err}, RESTOptions{})
			w := doRequest(t, r, http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"x"}`, nil)
			require.Equal(t, tt.want, w.Code)
			body := decodeEnvelope(t, w)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.msg, body["message"])
		})
	}
}

func TestREST_InvalidPayload(t *testing.T) {
	client := &fakeClient{}
	r := NewRouter(client, RESTOptions{})

	w := doRequest(t, r, http.MethodPost, "/api/auth/refresh", `not json`, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, client.lastMethod, "client must not be called")
}

func TestREST_RevokeNoContent(t *testing.T) {
	client := &fakeClient{}
	r := NewRouter(client, RESTOptions{})

	w := doRequest(t, r, http.MethodPost, "/api/auth/revoke", `{"refreshToken":"rt"}`,
		map[string]string{"Authorization": "Bearer tok"})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "rt", client.lastReq.(*authv1.RevokeRequest).RefreshToken)

	w = doRequest(t, r, http.MethodPost, "/api/auth/revoke-access-token", "", map[string]string{"Authorization": "Bearer tok"})
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "RevokeAccessToken", client.lastMethod)
}

func TestREST_SecureHeaders(t *testing.T) {
	r := NewRouter(&fakeClient{}, RESTOptions{})
	w := doRequest(t, r, http.MethodGet, "/health/live", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestREST_Readiness(t *testing.T) {
	var fail error
	r := NewRouter(&fakeClient{}, RESTOptions{Ready: func(context.Context) error { return fail }})

	w := doRequest(t, r, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	fail = errors.New("redis down")
	w = doRequest(t, r, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestREST_RateLimit(t *testing.T) {
	// 10/min gives a burst of one.
	r := NewRouter(&fakeClient{authResp: &authv1.AuthResponse{}}, RESTOptions{Limiter: ratelimit.New(10)})

	w := doRequest(t, r, http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"x"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doRequest(t, r, http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"x"}`, nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	w = doRequest(t, r, http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health endpoints are not throttled")
}
