package token

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/rohanbsher/immigration-ai/internal/config"
	"github.com/rohanbsher/immigration-ai/internal/domain"
)

// ProfileSource loads the application profile for an authenticated user.
// A missing profile is reported as domain.ErrNotFound, never a panic.
type ProfileSource interface {
	GetByUserID(ctx context.Context, userID string) (domain.Profile, error)
}

// Authenticator resolves the hosted auth provider's HS256 access tokens.
// Signature, expiry, and audience are verified locally against the shared
// JWT secret; the profile row supplies role and firm membership.
type Authenticator struct {
	secret    []byte
	audience  string
	clockSkew time.Duration
	profiles  ProfileSource
}

func NewAuthenticator(cfg config.Config, profiles ProfileSource) (*Authenticator, error) {
	secret := strings.TrimSpace(cfg.AuthJWTSecret)
	if secret == "" {
		return nil, errors.New("AUTH_JWT_SECRET is required")
	}
	if profiles == nil {
		return nil, errors.New("profile source is required")
	}
	return &Authenticator{
		secret:    []byte(secret),
		audience:  strings.TrimSpace(cfg.AuthAudience),
		clockSkew: cfg.AuthClockSkew(),
		profiles:  profiles,
	}, nil
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (a *Authenticator) Authenticate(c *gin.Context) (domain.AuthContext, error) {
	raw := extractBearerToken(c.GetHeader("Authorization"))
	if raw == "" {
		return domain.AuthContext{}, domain.ErrUnauthorized
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(a.clockSkew),
	}
	if a.audience != "" {
		options = append(options, jwt.WithAudience(a.audience))
	}

	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, options...)
	if err != nil || !parsed.Valid {
		return domain.AuthContext{}, domain.ErrUnauthorized
	}
	if claims.Subject == "" {
		return domain.AuthContext{}, domain.ErrUnauthorized
	}

	profile, err := a.profiles.GetByUserID(c.Request.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.AuthContext{}, domain.ErrUnauthorized
		}
		return domain.AuthContext{}, err
	}

	return domain.AuthContext{
		User:    domain.User{ID: claims.Subject, Email: claims.Email},
		Profile: profile,
	}, nil
}

func extractBearerToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(value), "bearer ") {
		return ""
	}
	return strings.TrimSpace(value[len("bearer "):])
}
