package policyopa

import (
	"context"
	"errors"
	"fmt"

	"github.com/open-policy-agent/opa/rego"

	"github.com/rohanbsher/immigration-ai/internal/domain"
	"github.com/rohanbsher/immigration-ai/internal/infra/auth/rbac"
)

const defaultQuery = "data.immigration.authz.result"

var _ domain.Authorizer = (*Engine)(nil)

// Engine evaluates route access against a rego bundle instead of the static
// role-set authorizer. Firms with bespoke access rules opt in via
// POLICY_BUNDLE_PATH; the bundle must define data.immigration.authz.result
// as {"allow": bool, "code": string}.
type Engine struct {
	query rego.PreparedEvalQuery
}

func NewEngineFromBundlePath(ctx context.Context, bundlePath string) (*Engine, error) {
	if bundlePath == "" {
		return nil, errors.New("bundle path is required")
	}
	r := rego.New(
		rego.Query(defaultQuery),
		rego.StrictBuiltinErrors(true),
		rego.Load([]string{bundlePath}, nil),
	)
	prepared, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare policy bundle: %w", err)
	}
	return &Engine{query: prepared}, nil
}

func (e *Engine) Require(ctx context.Context, auth domain.AuthContext, roles domain.RoleSet, permission string) error {
	if auth.User.ID == "" {
		return domain.ErrUnauthorized
	}
	allowed := make([]string, 0, len(roles))
	for _, role := range roles {
		allowed = append(allowed, string(role))
	}
	input := map[string]any{
		"subject":       auth.User.ID,
		"role":          string(auth.Profile.Role),
		"firm_id":       auth.Profile.FirmID,
		"permission":    permission,
		"allowed_roles": allowed,
	}
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return fmt.Errorf("evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return &rbac.AuthzError{Code: "POLICY_UNDEFINED", Err: domain.ErrForbidden}
	}
	decision, ok := results[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return &rbac.AuthzError{Code: "POLICY_MALFORMED", Err: domain.ErrForbidden}
	}
	if allow, _ := decision["allow"].(bool); allow {
		return nil
	}
	code, _ := decision["code"].(string)
	if code == "" {
		code = "POLICY_DENIED"
	}
	return &rbac.AuthzError{Code: code, Err: domain.ErrForbidden}
}
