package domain

import (
	"context"
	"errors"
)

// Role is the closed set of profile roles. Route access is decided by
// RoleSet membership, never by comparing free-form strings.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAttorney Role = "attorney"
	RoleClient   Role = "client"
	RoleStaff    Role = "staff"
)

func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleAdmin, RoleAttorney, RoleClient, RoleStaff:
		return Role(value), nil
	default:
		return "", errors.New("unknown role: " + value)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

type RoleSet []Role

func (s RoleSet) Contains(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// User is the identity resolved from the hosted auth provider's session.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile carries the application-level identity attached to a user.
type Profile struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	FirmID string `json:"firm_id"`
}

// AuthContext is built once per request by the guard pipeline and handed
// to the business handler. It is never mutated after construction.
type AuthContext struct {
	User    User    `json:"user"`
	Profile Profile `json:"profile"`
}

type Authorizer interface {
	Require(ctx context.Context, auth AuthContext, roles RoleSet, permission string) error
}
