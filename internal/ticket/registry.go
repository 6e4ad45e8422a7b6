package ticket

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
	"github.com/spec-kit/ticket-coordinator/internal/events"
	"github.com/spec-kit/ticket-coordinator/internal/gateway"
)

// Registry is the process-wide table of live ticket sessions keyed by
// channel identity. It routes events to the addressed session and reclaims
// sessions once they are Closed.
type Registry struct {
	deps Dependencies

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry constructs an empty registry.
func NewRegistry(deps Dependencies) *Registry {
	return &Registry{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// Rehydrate loads persisted active tickets into live sessions. Tickets
// persisted in Closing keep their frozen roster; re-issuing Close resumes
// their settlement.
func (r *Registry) Rehydrate(ctx context.Context) error {
	tickets, err := r.deps.Tickets.ListActiveTickets(ctx)
	if err != nil {
		return fmt.Errorf("list active tickets: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range tickets {
		t := tickets[i]
		r.sessions[t.ChannelID] = newSession(r.deps, &t)
	}
	r.deps.Logger.Info("rehydrated ticket sessions", zap.Int("count", len(tickets)))
	return nil
}

// CreateTicket validates the ticket type, snapshots its points and capacity
// from the effective catalog, creates the ticket channel, and registers a
// new Open session. Channel-creation failure aborts the whole operation and
// nothing is persisted.
func (r *Registry) CreateTicket(ctx context.Context, tenantID string, actor domain.Actor, ticketType string) (domain.Ticket, error) {
	cfg, err := r.deps.Settings.GetTenantConfig(ctx, tenantID)
	if err != nil {
		return domain.Ticket{}, domain.NewCollaboratorError("get tenant config", err)
	}
	if actor.HasRole(cfg.BlockedRoleID) {
		return domain.Ticket{}, domain.ErrAuthorizationDenied
	}

	catalog, err := r.deps.Settings.GetServiceCatalog(ctx, tenantID)
	if err != nil {
		return domain.Ticket{}, domain.NewCollaboratorError("get service catalog", err)
	}
	entry, ok := catalog[ticketType]
	if !ok {
		return domain.Ticket{}, domain.ErrUnknownTicketType
	}
	if entry.Capacity < 1 {
		entry.Capacity = domain.DefaultSlotCapacity
	}

	ticketID := uuid.NewString()
	name := channelName(ticketType, ticketID)
	channelID, err := r.deps.Gateway.CreateChannel(ctx, tenantID, name, cfg.TicketCategoryID, channelOverwrites(cfg, actor.ID))
	if err != nil {
		return domain.Ticket{}, domain.NewCollaboratorError("create channel", err)
	}

	t := &domain.Ticket{
		ID:           ticketID,
		ChannelID:    channelID,
		TenantID:     tenantID,
		RequesterID:  actor.ID,
		TicketType:   ticketType,
		Capacity:     entry.Capacity,
		RewardPoints: entry.Points,
		State:        domain.TicketStateOpen,
		CreatedAt:    r.deps.Clock.Now(),
	}
	if err := r.deps.Tickets.SaveTicket(ctx, t); err != nil {
		// Roll the channel back so an unpersisted ticket leaves no trace.
		if delErr := r.deps.Gateway.DeleteChannel(ctx, channelID); delErr != nil {
			r.deps.Logger.Warn("failed to roll back channel after save failure",
				zap.String("channel_id", channelID), zap.Error(delErr))
		}
		return domain.Ticket{}, domain.NewCollaboratorError("save ticket", err)
	}

	session := newSession(r.deps, t)
	r.mu.Lock()
	r.sessions[channelID] = session
	r.mu.Unlock()

	if r.deps.Dispatcher != nil {
		_ = r.deps.Dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventTicketCreated,
			TenantID:  tenantID,
			TicketID:  t.ID,
			ActorID:   actor.ID,
			Timestamp: t.CreatedAt,
			Payload: events.TicketCreatedPayload{
				ChannelID:    channelID,
				TicketType:   ticketType,
				Capacity:     t.Capacity,
				RewardPoints: t.RewardPoints,
			},
		})
	}
	return session.View(), nil
}

// JoinSlot routes a join event to the addressed session.
func (r *Registry) JoinSlot(ctx context.Context, channelID string, actor domain.Actor) ([]string, error) {
	session, err := r.lookup(channelID)
	if err != nil {
		return nil, err
	}
	return session.Join(ctx, actor)
}

// LeaveSlot routes a leave event to the addressed session.
func (r *Registry) LeaveSlot(ctx context.Context, channelID string, actor domain.Actor) ([]string, error) {
	session, err := r.lookup(channelID)
	if err != nil {
		return nil, err
	}
	return session.Leave(ctx, actor)
}

// RemoveHelper routes an admin forced removal to the addressed session.
func (r *Registry) RemoveHelper(ctx context.Context, channelID string, actor domain.Actor, targetID string) ([]string, error) {
	session, err := r.lookup(channelID)
	if err != nil {
		return nil, err
	}
	return session.RemoveHelper(ctx, actor, targetID)
}

// CloseTicket routes a close event to the addressed session. The session is
// removed from the table only after Closed is reached and all side effects
// are issued, so duplicate concurrent closes are rejected by the session's
// own state check, never silently dropped here.
func (r *Registry) CloseTicket(ctx context.Context, channelID string, actor domain.Actor) (SettlementResult, error) {
	session, err := r.lookup(channelID)
	if err != nil {
		return SettlementResult{}, err
	}
	result, err := session.Close(ctx, actor)
	if err != nil {
		return result, err
	}

	r.mu.Lock()
	delete(r.sessions, channelID)
	r.mu.Unlock()
	return result, nil
}

// GetTicket returns a point-in-time view of the addressed ticket.
func (r *Registry) GetTicket(channelID string) (domain.Ticket, error) {
	session, err := r.lookup(channelID)
	if err != nil {
		return domain.Ticket{}, err
	}
	return session.View(), nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) lookup(channelID string) (*Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[channelID]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNoSuchTicket
	}
	return session, nil
}

// channelOverwrites derives the channel permission set: everyone denied,
// requester and the configured helper/staff/admin roles granted view+send.
func channelOverwrites(cfg domain.TenantConfig, requesterID string) []gateway.Overwrite {
	overwrites := []gateway.Overwrite{
		{TargetID: "@everyone", IsRole: true, View: false, Send: false},
		{TargetID: requesterID, View: true, Send: true},
	}
	for _, roleID := range []string{cfg.HelperRoleID, cfg.StaffRoleID, cfg.AdminRoleID} {
		if roleID == "" {
			continue
		}
		overwrites = append(overwrites, gateway.Overwrite{TargetID: roleID, IsRole: true, View: true, Send: true})
	}
	return overwrites
}

func channelName(ticketType, ticketID string) string {
	slug := strings.ToLower(strings.ReplaceAll(ticketType, " ", "-"))
	short := ticketID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("ticket-%s-%s", slug, short)
}
