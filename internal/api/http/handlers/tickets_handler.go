package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-coordinator/internal/api/dto"
	"github.com/spec-kit/ticket-coordinator/internal/auth"
	"github.com/spec-kit/ticket-coordinator/internal/domain"
	"github.com/spec-kit/ticket-coordinator/internal/ticket"
	apperrors "github.com/spec-kit/ticket-coordinator/pkg/util"
)

// TicketsHandler exposes the ticket lifecycle over HTTP. Every route acts on
// behalf of the gateway-asserted actor in the principal's tenant.
type TicketsHandler struct {
	registry *ticket.Registry
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(registry *ticket.Registry) *TicketsHandler {
	return &TicketsHandler{registry: registry}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.TicketType) == "" {
		return apperrors.NewValidationError("ticket_type required", nil)
	}

	created, err := h.registry.CreateTicket(c.UserContext(), principal.TenantID, principal.Actor, req.TicketType)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.TicketFromDomain(created)})
}

// GetTicket GET /tickets/:channel_id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	t, err := h.scopedTicket(principal, c.Params("channel_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(t)})
}

// JoinSlot POST /tickets/:channel_id/join.
func (h *TicketsHandler) JoinSlot(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	channelID := c.Params("channel_id")
	if _, err := h.scopedTicket(principal, channelID); err != nil {
		return err
	}

	roster, err := h.registry.JoinSlot(c.UserContext(), channelID, principal.Actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RosterResponse{ChannelID: channelID, Helpers: roster}})
}

// LeaveSlot POST /tickets/:channel_id/leave.
func (h *TicketsHandler) LeaveSlot(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	channelID := c.Params("channel_id")
	if _, err := h.scopedTicket(principal, channelID); err != nil {
		return err
	}

	roster, err := h.registry.LeaveSlot(c.UserContext(), channelID, principal.Actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RosterResponse{ChannelID: channelID, Helpers: roster}})
}

// RemoveHelper DELETE /tickets/:channel_id/helpers/:actor_id.
func (h *TicketsHandler) RemoveHelper(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	channelID := c.Params("channel_id")
	if _, err := h.scopedTicket(principal, channelID); err != nil {
		return err
	}

	roster, err := h.registry.RemoveHelper(c.UserContext(), channelID, principal.Actor, c.Params("actor_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RosterResponse{ChannelID: channelID, Helpers: roster}})
}

// CloseTicket POST /tickets/:channel_id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("actor required")
	}
	channelID := c.Params("channel_id")
	if _, err := h.scopedTicket(principal, channelID); err != nil {
		return err
	}

	result, err := h.registry.CloseTicket(c.UserContext(), channelID, principal.Actor)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CloseFromResult(channelID, result)})
}

// scopedTicket resolves a channel within the principal's tenant. A ticket
// belonging to another tenant is indistinguishable from a missing one.
func (h *TicketsHandler) scopedTicket(principal *auth.Principal, channelID string) (domain.Ticket, error) {
	t, err := h.registry.GetTicket(channelID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if t.TenantID != principal.TenantID {
		return domain.Ticket{}, domain.ErrNoSuchTicket
	}
	return t, nil
}
