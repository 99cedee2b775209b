package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/open-policy-agent/opa/v1/rego"
)

const allowQuery = "data.eventflow.authz.allow"

// DefaultPolicy lets any authenticated caller through except on admin methods, which need the admin role.
const DefaultPolicy = `package eventflow.authz

default allow := false

admin_method if input.method in input.admin_methods

allow if not admin_method

allow if {
	admin_method
	input.subject.role == input.admin_role
}
`

// Input is the authorization request for one RPC.
type Input struct {
	Method string
	UserID string
	Role   string
}

// Authorizer decides whether a caller may invoke a method.
type Authorizer interface {
	Authorize(ctx context.Context, in Input) (bool, error)
}

// OPAAuthorizer evaluates a Rego policy prepared once at construction.
type OPAAuthorizer struct {
	query        rego.PreparedEvalQuery
	adminRole    string
	adminMethods []string
}

// NewOPAAuthorizer compiles policy (DefaultPolicy when empty) and returns an authorizer that
// treats adminMethods as restricted to adminRole.
func NewOPAAuthorizer(ctx context.Context, policy, adminRole string, adminMethods []string) (*OPAAuthorizer, error) {
	if policy == "" {
		policy = DefaultPolicy
	}
	q, err := rego.New(
		rego.Query(allowQuery),
		rego.Module("authz.rego", policy),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare authz policy: %w", err)
	}
	methods := append([]string(nil), adminMethods...)
	sort.Strings(methods)
	return &OPAAuthorizer{query: q, adminRole: adminRole, adminMethods: methods}, nil
}

// Authorize returns true when the policy allows the call. An undefined result is a deny.
func (a *OPAAuthorizer) Authorize(ctx context.Context, in Input) (bool, error) {
	methods := make([]any, len(a.adminMethods))
	for i, m := range a.adminMethods {
		methods[i] = m
	}
	rs, err := a.query.Eval(ctx, rego.EvalInput(map[string]any{
		"method":        in.Method,
		"admin_role":    a.adminRole,
		"admin_methods": methods,
		"subject": map[string]any{
			"id":   in.UserID,
			"role": in.Role,
		},
	}))
	if err != nil {
		return false, fmt.Errorf("eval authz policy: %w", err)
	}
	return rs.Allowed(), nil
}

// HealthCheck evaluates the prepared policy against a canned input. Does not touch the network.
func (a *OPAAuthorizer) HealthCheck(ctx context.Context) error {
	_, err := a.Authorize(ctx, Input{Method: "/grpc.health.v1.Health/Check"})
	return err
}
