package http

import (
	"crypto/subtle"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rohanbsher/immigration-ai/internal/domain"
	"github.com/rohanbsher/immigration-ai/internal/infra/auth/rbac"
	"github.com/rohanbsher/immigration-ai/internal/infra/ratelimit"
)

// Authenticator resolves the caller's identity from the request. It
// returns domain.ErrUnauthorized for any credential problem; other errors
// mean the resolver itself failed.
type Authenticator interface {
	Authenticate(c *gin.Context) (domain.AuthContext, error)
}

const authContextKey = "auth_context"

// guard wraps a business handler with the request pipeline: identity
// resolution, rate limiting, then the role gate. The handler runs only
// when every stage passes, with the resolved AuthContext in the gin
// context.
//
// Identity runs before the limiter here so counters key on the user id
// and a burst from one account cannot starve others behind shared NAT.
// The cost is that unauthenticated floods still pay token parsing;
// public routes (webhooks, admin key) take guardPublic instead, which
// limits by caller IP before anything else.
func (s *Server) guard(routeID string, policy ratelimit.Policy, roles domain.RoleSet, permission string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.AuthMode == "none" {
			if !s.enforceLimit(c, policy, routeID, c.ClientIP()) {
				return
			}
			// Identity and role gates are off; handlers still find an
			// auth context, just an anonymous one.
			c.Set(authContextKey, domain.AuthContext{})
			s.invoke(c, routeID, handler)
			return
		}
		if s.authInitErr != nil || s.authenticator == nil {
			log.Printf("auth config error on %s: %v", routeID, s.authInitErr)
			writeErrorCode(c, http.StatusInternalServerError, "AUTH_CONFIG_ERROR", "auth configuration error")
			return
		}

		auth, err := s.authenticator.Authenticate(c)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
				return
			}
			log.Printf("identity resolution failed on %s: %v", routeID, err)
			writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
			return
		}

		if !s.enforceLimit(c, policy, routeID, auth.User.ID) {
			return
		}

		if err := s.authorizer.Require(c.Request.Context(), auth, roles, permission); err != nil {
			writeAuthzError(c, err)
			return
		}

		c.Set(authContextKey, auth)
		s.invoke(c, routeID, handler)
	}
}

// invoke runs the business handler with panic containment. A fault is
// logged once with the route identity and answered with the generic
// envelope; the panic value never reaches the response.
func (s *Server) invoke(c *gin.Context, routeID string, handler gin.HandlerFunc) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("handler fault on %s: %v", routeID, rec)
			if !c.Writer.Written() {
				writeErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
			}
			c.Abort()
		}
	}()
	handler(c)
}

// guardPublic protects unauthenticated routes. The only gate is an
// IP-keyed rate limit; the handler does its own request validation
// (webhook signatures, admin key).
func (s *Server) guardPublic(routeID string, policy ratelimit.Policy, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.enforceLimit(c, policy, routeID, c.ClientIP()) {
			return
		}
		s.invoke(c, routeID, handler)
	}
}

// guardAdmin protects operator endpoints. IP-keyed limit first, then the
// static admin key, then an admin-role session as fallback.
func (s *Server) guardAdmin(routeID string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.enforceLimit(c, ratelimit.Auth, routeID, c.ClientIP()) {
			return
		}
		if key := strings.TrimSpace(c.GetHeader("X-Admin-Key")); key != "" && s.adminAPIKey != "" {
			if subtle.ConstantTimeCompare([]byte(key), []byte(s.adminAPIKey)) == 1 {
				s.invoke(c, routeID, handler)
				return
			}
			writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}
		if s.cfg.AuthMode == "none" {
			writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "admin key required")
			return
		}
		if s.authInitErr != nil || s.authenticator == nil {
			log.Printf("auth config error on %s: %v", routeID, s.authInitErr)
			writeErrorCode(c, http.StatusInternalServerError, "AUTH_CONFIG_ERROR", "auth configuration error")
			return
		}
		auth, err := s.authenticator.Authenticate(c)
		if err != nil {
			writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
			return
		}
		if err := s.authorizer.Require(c.Request.Context(), auth, domain.RoleSet{domain.RoleAdmin}, domain.PermAdminAll); err != nil {
			writeAuthzError(c, err)
			return
		}
		c.Set(authContextKey, auth)
		s.invoke(c, routeID, handler)
	}
}

func writeAuthzError(c *gin.Context, err error) {
	if authz, ok := rbac.IsAuthzError(err); ok {
		writeErrorCode(c, http.StatusForbidden, authz.Code, "forbidden")
		return
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		writeErrorCode(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return
	}
	writeErrorCode(c, http.StatusForbidden, "FORBIDDEN", "forbidden")
}

func getAuth(c *gin.Context) (domain.AuthContext, bool) {
	raw, ok := c.Get(authContextKey)
	if !ok {
		return domain.AuthContext{}, false
	}
	auth, ok := raw.(domain.AuthContext)
	return auth, ok
}
