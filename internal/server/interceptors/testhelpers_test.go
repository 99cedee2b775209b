package interceptors

import (
	"context"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"eventflow/auth-service/internal/revocation"
	"eventflow/auth-service/internal/security"
)

type memCache struct {
	mu   sync.Mutex
	jtis map[string]bool
	err  error
}

func (c *memCache) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.jtis[jti], nil
}

func (c *memCache) Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.jtis == nil {
		c.jtis = map[string]bool{}
	}
	c.jtis[jti] = true
	return nil
}

type testTokens struct {
	provider  *security.TokenProvider
	cache     *memCache
	validator *revocation.Validator
}

func newTestTokens(t *testing.T) *testTokens {
	t.Helper()
	p, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	c := &memCache{}
	return &testTokens{provider: p, cache: c, validator: revocation.NewValidator(p, c)}
}

func (tt *testTokens) issue(t *testing.T, userID, role string) (string, *security.AccessClaims) {
	t.Helper()
	tok, claims, err := tt.provider.GenerateAccessToken(userID, userID+"@example.com", role, "Test", "User")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return tok, claims
}

func bearerCtx(token string) context.Context {
	return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+token))
}

func info(method string) *grpc.UnaryServerInfo {
	return &grpc.UnaryServerInfo{FullMethod: method}
}

func okHandler(ctx context.Context, req interface{}) (interface{}, error) {
	return "success", nil
}
