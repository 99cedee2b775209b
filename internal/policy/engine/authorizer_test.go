package engine

import (
	"context"
	"testing"
)

const deactivate = "/eventflow.admin.v1.AdminService/DeactivateUser"

func newTestAuthorizer(t *testing.T, policy string) *OPAAuthorizer {
	t.Helper()
	a, err := NewOPAAuthorizer(context.Background(), policy, "Admin", []string{deactivate})
	if err != nil {
		t.Fatalf("NewOPAAuthorizer: %v", err)
	}
	return a
}

func TestOPAAuthorizer_HealthCheck(t *testing.T) {
	if err := newTestAuthorizer(t, "").HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
}

func TestOPAAuthorizer_DefaultPolicy(t *testing.T) {
	a := newTestAuthorizer(t, "")
	tests := []struct {
		name string
		in   Input
		want bool
	}{
		{"admin on admin method", Input{Method: deactivate, UserID: "u1", Role: "Admin"}, true},
		{"user on admin method", Input{Method: deactivate, UserID: "u2", Role: "User"}, false},
		{"no role on admin method", Input{Method: deactivate}, false},
		{"user on regular method", Input{Method: "/eventflow.auth.v1.AuthService/Me", Role: "User"}, true},
		{"role names are case sensitive", Input{Method: deactivate, Role: "admin"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Authorize(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("Authorize: %v", err)
			}
			if got != tt.want {
				t.Errorf("Authorize(%+v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOPAAuthorizer_CustomPolicy(t *testing.T) {
	denyAll := `package eventflow.authz

default allow := false
`
	a := newTestAuthorizer(t, denyAll)
	got, err := a.Authorize(context.Background(), Input{Method: "/eventflow.auth.v1.AuthService/Me", Role: "Admin"})
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if got {
		t.Error("deny-all policy must not allow")
	}
}

func TestNewOPAAuthorizer_InvalidPolicy(t *testing.T) {
	_, err := NewOPAAuthorizer(context.Background(), "package broken\nallow if {", "Admin", nil)
	if err == nil {
		t.Fatal("expected compile error")
	}
}
