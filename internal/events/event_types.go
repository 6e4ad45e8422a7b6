package events

import (
	"time"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventHelperJoined   EventType = "helper_joined"
	EventHelperLeft     EventType = "helper_left"
	EventTicketClosed   EventType = "ticket_closed"
	EventPointsSettled  EventType = "points_settled"
	EventPointsAdjusted EventType = "points_adjusted"
)

// Event represents a domain event emitted by the coordinator.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TenantID  string      `json:"tenant_id"`
	TicketID  string      `json:"ticket_id,omitempty"`
	ActorID   string      `json:"actor_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ChannelID    string `json:"channel_id"`
	TicketType   string `json:"ticket_type"`
	Capacity     int    `json:"capacity"`
	RewardPoints int    `json:"reward_points"`
}

// RosterChangedPayload payload for helper join/leave.
type RosterChangedPayload struct {
	HelperID string   `json:"helper_id"`
	Roster   []string `json:"roster"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	ChannelID    string             `json:"channel_id"`
	FrozenRoster []string           `json:"frozen_roster"`
	State        domain.TicketState `json:"state"`
}

// PointsSettledPayload payload.
type PointsSettledPayload struct {
	HelperID   string `json:"helper_id"`
	Points     int    `json:"points"`
	NewBalance int    `json:"new_balance"`
}

// PointsAdjustedPayload payload for admin point edits.
type PointsAdjustedPayload struct {
	UserID     string `json:"user_id"`
	Delta      int    `json:"delta"`
	NewBalance int    `json:"new_balance"`
}
