package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-coordinator/internal/api/dto"
	"github.com/spec-kit/ticket-coordinator/internal/auth"
	"github.com/spec-kit/ticket-coordinator/internal/domain"
	"github.com/spec-kit/ticket-coordinator/internal/service"
	apperrors "github.com/spec-kit/ticket-coordinator/pkg/util"
)

// AuthHandler issues actor tokens to the chat-platform gateway.
type AuthHandler struct {
	service *service.TokenService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokenService *service.TokenService) *AuthHandler {
	return &AuthHandler{service: tokenService}
}

// IssueToken POST /auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.IssueTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TenantID == "" || req.APIKey == "" || req.ActorID == "" {
		return apperrors.NewValidationError("tenant_id, api_key, actor_id required", nil)
	}

	actor := domain.Actor{ID: req.ActorID, RoleIDs: req.RoleIDs, PlatformAdmin: req.PlatformAdmin}
	issued, err := h.service.IssueToken(c.UserContext(), req.TenantID, req.APIKey, actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.IssueTokenResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt}})
}

// RotateKey PUT /auth/key.
func (h *AuthHandler) RotateKey(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.RotateKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return apperrors.NewValidationError("api_key required", nil)
	}

	if err := h.service.RotateIntegrationKey(c.UserContext(), principal.Actor, principal.TenantID, req.APIKey); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
