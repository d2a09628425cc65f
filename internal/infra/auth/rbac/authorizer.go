package rbac

import (
	"context"
	"errors"
	"strings"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

type AuthzError struct {
	Code string
	Err  error
}

func (e *AuthzError) Error() string {
	if e == nil {
		return ""
	}
	return e.Code
}

func (e *AuthzError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func IsAuthzError(err error) (*AuthzError, bool) {
	var authz *AuthzError
	if errors.As(err, &authz) {
		return authz, true
	}
	return nil, false
}

// Authorizer decides route access by membership of the resolved role in the
// route's allowed set. Admins pass every check except when the role itself
// is invalid.
type Authorizer struct{}

var _ domain.Authorizer = (*Authorizer)(nil)

func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

func (a *Authorizer) Require(_ context.Context, auth domain.AuthContext, roles domain.RoleSet, permission string) error {
	if auth.User.ID == "" {
		return domain.ErrUnauthorized
	}
	if !auth.Profile.Role.Valid() {
		return &AuthzError{Code: "INVALID_ROLE", Err: domain.ErrForbidden}
	}
	if auth.Profile.Role == domain.RoleAdmin {
		return nil
	}
	if strings.HasPrefix(permission, "admin:") {
		return &AuthzError{Code: "MISSING_ROLE", Err: domain.ErrForbidden}
	}
	if len(roles) == 0 {
		return nil
	}
	if !roles.Contains(auth.Profile.Role) {
		return &AuthzError{Code: "MISSING_ROLE", Err: domain.ErrForbidden}
	}
	return nil
}
