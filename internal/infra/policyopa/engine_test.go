package policyopa

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rohanbsher/immigration-ai/internal/domain"
	"github.com/rohanbsher/immigration-ai/internal/infra/auth/rbac"
)

const testPolicy = `package immigration.authz

import rego.v1

default result := {"allow": false, "code": "POLICY_DENIED"}

result := {"allow": true, "code": ""} if {
	input.role == "admin"
}

result := {"allow": true, "code": ""} if {
	input.role in input.allowed_roles
}

result := {"allow": false, "code": "MISSING_ROLE"} if {
	input.role != "admin"
	not input.role in input.allowed_roles
}
`

func writeBundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "authz.rego")
	if err := os.WriteFile(path, []byte(testPolicy), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	return path
}

func engineForTest(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngineFromBundlePath(context.Background(), writeBundle(t))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func authCtx(role domain.Role) domain.AuthContext {
	return domain.AuthContext{
		User:    domain.User{ID: "user-1"},
		Profile: domain.Profile{UserID: "user-1", Role: role, FirmID: "firm-1"},
	}
}

func TestEngine_AllowsRoleInSet(t *testing.T) {
	engine := engineForTest(t)
	if err := engine.Require(context.Background(), authCtx(domain.RoleAttorney), domain.RoleSet{domain.RoleAttorney}, domain.PermCaseRead); err != nil {
		t.Fatalf("expected allow, got %v", err)
	}
}

func TestEngine_DeniesRoleOutsideSet(t *testing.T) {
	engine := engineForTest(t)
	err := engine.Require(context.Background(), authCtx(domain.RoleClient), domain.RoleSet{domain.RoleAttorney}, domain.PermCaseWrite)
	authz, ok := rbac.IsAuthzError(err)
	if !ok {
		t.Fatalf("expected AuthzError, got %v", err)
	}
	if authz.Code != "MISSING_ROLE" {
		t.Fatalf("code = %q, want MISSING_ROLE", authz.Code)
	}
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatal("policy denial should unwrap to ErrForbidden")
	}
}

func TestEngine_AdminOverride(t *testing.T) {
	engine := engineForTest(t)
	if err := engine.Require(context.Background(), authCtx(domain.RoleAdmin), domain.RoleSet{domain.RoleAttorney}, domain.PermFirmManage); err != nil {
		t.Fatalf("admin should pass, got %v", err)
	}
}

func TestEngine_MissingSubject(t *testing.T) {
	engine := engineForTest(t)
	err := engine.Require(context.Background(), domain.AuthContext{}, nil, domain.PermCaseRead)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
