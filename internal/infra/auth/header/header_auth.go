package header

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

// Authenticator trusts X-Principal-* headers set by an upstream proxy.
// Internal and test deployments only; never expose it to the public edge.
type Authenticator struct{}

func NewAuthenticator() *Authenticator {
	return &Authenticator{}
}

func (h *Authenticator) Authenticate(c *gin.Context) (domain.AuthContext, error) {
	subject := strings.TrimSpace(c.GetHeader("X-Principal-Subject"))
	if subject == "" {
		return domain.AuthContext{}, domain.ErrUnauthorized
	}
	role, err := domain.ParseRole(strings.TrimSpace(c.GetHeader("X-Principal-Role")))
	if err != nil {
		return domain.AuthContext{}, domain.ErrUnauthorized
	}
	email := strings.TrimSpace(c.GetHeader("X-Principal-Email"))
	return domain.AuthContext{
		User: domain.User{ID: subject, Email: email},
		Profile: domain.Profile{
			ID:     strings.TrimSpace(c.GetHeader("X-Principal-Profile")),
			UserID: subject,
			Email:  email,
			Role:   role,
			FirmID: strings.TrimSpace(c.GetHeader("X-Principal-Firm")),
		},
	}, nil
}
