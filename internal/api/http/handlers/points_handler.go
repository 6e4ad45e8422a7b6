package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-coordinator/internal/api/dto"
	"github.com/spec-kit/ticket-coordinator/internal/auth"
	"github.com/spec-kit/ticket-coordinator/internal/service"
	apperrors "github.com/spec-kit/ticket-coordinator/pkg/util"
)

// PointsHandler exposes balances, the leaderboard, and admin point edits.
type PointsHandler struct {
	service *service.PointsService
}

// NewPointsHandler constructs handler.
func NewPointsHandler(pointsService *service.PointsService) *PointsHandler {
	return &PointsHandler{service: pointsService}
}

// GetPoints GET /points/:user_id.
func (h *PointsHandler) GetPoints(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	userID := c.Params("user_id")
	points, err := h.service.GetPoints(c.UserContext(), principal.TenantID, userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PointsResponse{UserID: userID, Points: points}})
}

// Leaderboard GET /points.
func (h *PointsHandler) Leaderboard(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	entries, err := h.service.Leaderboard(c.UserContext(), principal.TenantID, c.QueryInt("limit"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LeaderboardFromEntries(entries)})
}

// AdjustPoints POST /points/:user_id/adjust.
func (h *PointsHandler) AdjustPoints(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.AdjustPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Delta == 0 {
		return apperrors.NewValidationError("delta must be non-zero", nil)
	}

	userID := c.Params("user_id")
	balance, err := h.service.AdjustPoints(c.UserContext(), principal.Actor, principal.TenantID, userID, req.Delta)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PointsResponse{UserID: userID, Points: balance}})
}

// SetPoints PUT /points/:user_id.
func (h *PointsHandler) SetPoints(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.SetPointsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	userID := c.Params("user_id")
	balance, err := h.service.SetPoints(c.UserContext(), principal.Actor, principal.TenantID, userID, req.Points)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PointsResponse{UserID: userID, Points: balance}})
}

// ResetPoints DELETE /points.
func (h *PointsHandler) ResetPoints(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	if err := h.service.ResetAll(c.UserContext(), principal.Actor, principal.TenantID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
