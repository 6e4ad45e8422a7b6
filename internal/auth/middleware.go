package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
	apperrors "github.com/spec-kit/ticket-coordinator/pkg/util"
)

const principalKey = "auth_principal"

// Principal is the authenticated gateway caller: one chat-platform actor
// acting within one tenant.
type Principal struct {
	TenantID string
	Actor    domain.Actor
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}
	if claims.TenantID == "" || claims.ActorID == "" {
		return apperrors.NewUnauthorized("token missing identity")
	}

	c.Locals(principalKey, &Principal{
		TenantID: claims.TenantID,
		Actor: domain.Actor{
			ID:            claims.ActorID,
			RoleIDs:       claims.RoleIDs,
			PlatformAdmin: claims.PlatformAdmin,
		},
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
