package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-coordinator/internal/api/dto"
	"github.com/spec-kit/ticket-coordinator/internal/auth"
	"github.com/spec-kit/ticket-coordinator/internal/service"
	apperrors "github.com/spec-kit/ticket-coordinator/pkg/util"
)

// ConfigHandler exposes tenant setup and catalog management.
type ConfigHandler struct {
	service *service.ConfigService
}

// NewConfigHandler constructs handler.
func NewConfigHandler(configService *service.ConfigService) *ConfigHandler {
	return &ConfigHandler{service: configService}
}

// GetConfig GET /config.
func (h *ConfigHandler) GetConfig(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	cfg, err := h.service.GetTenantConfig(c.UserContext(), principal.Actor, principal.TenantID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TenantConfigFromDomain(cfg)})
}

// UpdateConfig PUT /config.
func (h *ConfigHandler) UpdateConfig(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.TenantSetupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	cfg, err := h.service.UpdateTenantConfig(c.UserContext(), principal.Actor, principal.TenantID, service.TenantSetupInput{
		AdminRoleID:         req.AdminRoleID,
		StaffRoleID:         req.StaffRoleID,
		HelperRoleID:        req.HelperRoleID,
		BlockedRoleID:       req.BlockedRoleID,
		RewardRoleID:        req.RewardRoleID,
		TicketCategoryID:    req.TicketCategoryID,
		TranscriptChannelID: req.TranscriptChannelID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TenantConfigFromDomain(cfg)})
}

// ResetConfig DELETE /config.
func (h *ConfigHandler) ResetConfig(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	if err := h.service.ResetTenantConfig(c.UserContext(), principal.Actor, principal.TenantID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCatalog GET /config/catalog.
func (h *ConfigHandler) GetCatalog(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	catalog, err := h.service.GetServiceCatalog(c.UserContext(), principal.TenantID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CatalogFromDomain(catalog)})
}

// UpdateCatalog PUT /config/catalog.
func (h *ConfigHandler) UpdateCatalog(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.CatalogOverridesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Points == nil && req.Slots == nil {
		return apperrors.NewValidationError("points or slots required", nil)
	}

	if req.Points != nil {
		if err := h.service.SetCatalogPoints(c.UserContext(), principal.Actor, principal.TenantID, req.Points); err != nil {
			return err
		}
	}
	if req.Slots != nil {
		if err := h.service.SetCatalogSlots(c.UserContext(), principal.Actor, principal.TenantID, req.Slots); err != nil {
			return err
		}
	}

	catalog, err := h.service.GetServiceCatalog(c.UserContext(), principal.TenantID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CatalogFromDomain(catalog)})
}
