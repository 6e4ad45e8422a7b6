package dto

import (
	"time"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
	"github.com/spec-kit/ticket-coordinator/internal/ticket"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	TicketType string `json:"ticket_type"`
}

// TicketResponse describes one live ticket.
type TicketResponse struct {
	ID           string             `json:"id"`
	ChannelID    string             `json:"channel_id"`
	TicketType   string             `json:"ticket_type"`
	RequesterID  string             `json:"requester_id"`
	Capacity     int                `json:"capacity"`
	RewardPoints int                `json:"reward_points"`
	Helpers      []string           `json:"helpers"`
	State        domain.TicketState `json:"state"`
	CreatedAt    time.Time          `json:"created_at"`
}

// RosterResponse reports the helper roster after a slot change.
type RosterResponse struct {
	ChannelID string   `json:"channel_id"`
	Helpers   []string `json:"helpers"`
}

// AwardResponse is one settled reward.
type AwardResponse struct {
	HelperID   string `json:"helper_id"`
	Points     int    `json:"points"`
	NewBalance int    `json:"new_balance"`
}

// CloseTicketResponse reports a completed closure.
type CloseTicketResponse struct {
	ChannelID string          `json:"channel_id"`
	Awards    []AwardResponse `json:"awards"`
}

// TicketFromDomain maps a domain ticket to its response shape.
func TicketFromDomain(t domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           t.ID,
		ChannelID:    t.ChannelID,
		TicketType:   t.TicketType,
		RequesterID:  t.RequesterID,
		Capacity:     t.Capacity,
		RewardPoints: t.RewardPoints,
		Helpers:      t.Helpers,
		State:        t.State,
		CreatedAt:    t.CreatedAt,
	}
}

// CloseFromResult maps a settlement result to its response shape.
func CloseFromResult(channelID string, result ticket.SettlementResult) CloseTicketResponse {
	awards := make([]AwardResponse, 0, len(result.Awards))
	for _, award := range result.Awards {
		awards = append(awards, AwardResponse{
			HelperID:   award.HelperID,
			Points:     award.Points,
			NewBalance: award.NewBalance,
		})
	}
	return CloseTicketResponse{ChannelID: channelID, Awards: awards}
}
