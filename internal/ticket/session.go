package ticket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-coordinator/internal/auth"
	"github.com/spec-kit/ticket-coordinator/internal/clock"
	"github.com/spec-kit/ticket-coordinator/internal/domain"
	"github.com/spec-kit/ticket-coordinator/internal/events"
	"github.com/spec-kit/ticket-coordinator/internal/gateway"
)

// Dependencies bundles the collaborators shared by the registry and its
// sessions.
type Dependencies struct {
	Settings       SettingsStore
	Tickets        TicketStore
	Gateway        gateway.ChatGateway
	Ledger         Ledger
	Effects        EffectEnqueuer
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Clock          clock.Clock
	HistoryTimeout time.Duration
}

// Session owns one ticket's state machine and its slot allocator. All
// mutating transitions are serialized by the session lock; the lock is never
// held across a collaborator call.
type Session struct {
	deps    Dependencies
	settler *Settler

	mu            sync.Mutex
	ticket        *domain.Ticket
	slots         *SlotAllocator
	frozen        []string
	closeInFlight bool
}

func newSession(deps Dependencies, t *domain.Ticket) *Session {
	slots := NewSlotAllocator(t.Capacity)
	slots.Restore(t.Helpers)
	s := &Session{
		deps:    deps,
		settler: NewSettler(deps.Ledger, deps.Logger),
		ticket:  t,
		slots:   slots,
	}
	if t.State == domain.TicketStateClosing {
		// A ticket persisted mid-close keeps its frozen roster; re-issuing
		// Close resumes settlement.
		s.frozen = t.RosterSnapshot()
	}
	return s
}

// ChannelID returns the ticket's channel identity.
func (s *Session) ChannelID() string {
	return s.ticket.ChannelID
}

// View returns a point-in-time copy of the ticket.
func (s *Session) View() domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := *s.ticket
	t.Helpers = s.slots.Roster()
	return t
}

// Join reserves a slot for the actor. Requires Helper authorization and the
// Open state; on success a permission grant for the ticket channel is
// enqueued for the effects executor.
func (s *Session) Join(ctx context.Context, actor domain.Actor) ([]string, error) {
	cfg, err := s.tenantConfig(ctx)
	if err != nil {
		return nil, err
	}
	if actor.HasRole(cfg.BlockedRoleID) {
		return nil, domain.ErrAuthorizationDenied
	}
	if _, err := auth.Authorize(actor, cfg, auth.ActionJoinSlot); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.ticket.State != domain.TicketStateOpen {
		s.mu.Unlock()
		return nil, domain.ErrTicketNotOpen
	}
	roster, err := s.slots.Join(actor.ID)
	if err == nil {
		s.ticket.Helpers = roster
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.persistRoster(ctx)
	s.deps.Effects.EnqueuePermission(s.ticket.ChannelID, actor.ID, true, true)
	s.publish(ctx, events.EventHelperJoined, actor.ID, events.RosterChangedPayload{
		HelperID: actor.ID,
		Roster:   roster,
	})
	return roster, nil
}

// Leave releases the actor's own slot. Any authorization level may leave,
// but only for itself; the channel permission is revoked via the effects
// executor.
func (s *Session) Leave(ctx context.Context, actor domain.Actor) ([]string, error) {
	cfg, err := s.tenantConfig(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := auth.Authorize(actor, cfg, auth.ActionLeaveSlot); err != nil {
		return nil, err
	}
	return s.removeHelper(ctx, actor.ID)
}

// RemoveHelper force-removes a helper from the roster. Admin only.
func (s *Session) RemoveHelper(ctx context.Context, actor domain.Actor, targetID string) ([]string, error) {
	cfg, err := s.tenantConfig(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := auth.Authorize(actor, cfg, auth.ActionRemoveHelper); err != nil {
		return nil, err
	}
	return s.removeHelper(ctx, targetID)
}

func (s *Session) removeHelper(ctx context.Context, helperID string) ([]string, error) {
	s.mu.Lock()
	if s.ticket.State != domain.TicketStateOpen {
		s.mu.Unlock()
		return nil, domain.ErrTicketNotOpen
	}
	roster, err := s.slots.Leave(helperID)
	if err == nil {
		s.ticket.Helpers = roster
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.persistRoster(ctx)
	s.deps.Effects.EnqueuePermission(s.ticket.ChannelID, helperID, false, false)
	s.publish(ctx, events.EventHelperLeft, helperID, events.RosterChangedPayload{
		HelperID: helperID,
		Roster:   roster,
	})
	return roster, nil
}

// Close drives the ticket from Open to Closed: freeze the roster, submit the
// transcript (best effort), settle rewards, delete the channel. Settlement
// or deletion failure leaves the ticket in Closing so Close can be safely
// re-issued; a concurrent Close observes Closing and is rejected.
func (s *Session) Close(ctx context.Context, actor domain.Actor) (SettlementResult, error) {
	cfg, err := s.tenantConfig(ctx)
	if err != nil {
		return SettlementResult{}, err
	}
	if _, err := auth.Authorize(actor, cfg, auth.ActionCloseTicket); err != nil {
		return SettlementResult{}, err
	}

	s.mu.Lock()
	switch s.ticket.State {
	case domain.TicketStateClosed:
		s.mu.Unlock()
		return SettlementResult{}, domain.ErrAlreadyClosed
	case domain.TicketStateClosing:
		if s.closeInFlight {
			s.mu.Unlock()
			return SettlementResult{}, domain.ErrAlreadyClosing
		}
		// Prior close attempt failed after the freeze; resume it.
	default:
		s.ticket.State = domain.TicketStateClosing
		s.frozen = s.slots.Roster()
		s.ticket.Helpers = s.frozen
	}
	s.closeInFlight = true
	frozen := make([]string, len(s.frozen))
	copy(frozen, s.frozen)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.closeInFlight = false
		s.mu.Unlock()
	}()

	s.persistRoster(ctx)
	s.submitTranscript(ctx, cfg, frozen)

	result, err := s.settler.Settle(ctx, s.ticket, frozen)
	if err != nil {
		return result, err
	}

	if err := s.deps.Gateway.DeleteChannel(ctx, s.ticket.ChannelID); err != nil {
		return result, domain.NewCollaboratorError("delete channel", err)
	}

	s.mu.Lock()
	s.ticket.State = domain.TicketStateClosed
	s.mu.Unlock()

	if err := s.deps.Tickets.DeleteTicket(ctx, s.ticket.ChannelID); err != nil {
		s.deps.Logger.Warn("failed to delete persisted ticket",
			zap.String("ticket_id", s.ticket.ID), zap.Error(err))
	}

	for _, award := range result.Awards {
		s.publish(ctx, events.EventPointsSettled, award.HelperID, events.PointsSettledPayload{
			HelperID:   award.HelperID,
			Points:     award.Points,
			NewBalance: award.NewBalance,
		})
	}
	s.publish(ctx, events.EventTicketClosed, actor.ID, events.TicketClosedPayload{
		ChannelID:    s.ticket.ChannelID,
		FrozenRoster: frozen,
		State:        domain.TicketStateClosed,
	})
	return result, nil
}

// submitTranscript fetches history and ships it to the transcript sink. Any
// failure here is logged and never blocks settlement or deletion.
func (s *Session) submitTranscript(ctx context.Context, cfg domain.TenantConfig, frozen []string) {
	if cfg.TranscriptChannelID == "" {
		return
	}

	hctx := ctx
	if s.deps.HistoryTimeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, s.deps.HistoryTimeout)
		defer cancel()
	}
	msgs, err := s.deps.Gateway.FetchHistory(hctx, s.ticket.ChannelID)
	if err != nil {
		s.deps.Logger.Warn("transcript history fetch failed",
			zap.String("ticket_id", s.ticket.ID), zap.Error(err))
		return
	}

	view := *s.ticket
	view.Helpers = frozen
	transcript := RenderTranscript(&view, msgs)

	if TranscriptFitsInline(transcript) {
		err = s.deps.Gateway.SendMessage(ctx, cfg.TranscriptChannelID, transcript)
	} else {
		err = s.deps.Gateway.SendDocument(ctx, cfg.TranscriptChannelID, TranscriptFilename(&view), []byte(transcript))
	}
	if err != nil {
		s.deps.Logger.Warn("transcript submission failed",
			zap.String("ticket_id", s.ticket.ID), zap.Error(err))
	}
}

func (s *Session) tenantConfig(ctx context.Context) (domain.TenantConfig, error) {
	cfg, err := s.deps.Settings.GetTenantConfig(ctx, s.ticket.TenantID)
	if err != nil {
		return domain.TenantConfig{}, domain.NewCollaboratorError("get tenant config", err)
	}
	return cfg, nil
}

// persistRoster writes the current state and roster. The in-memory session
// is the source of truth; persistence failures are logged, not propagated.
func (s *Session) persistRoster(ctx context.Context) {
	view := s.View()
	if err := s.deps.Tickets.UpdateTicket(ctx, &view); err != nil {
		s.deps.Logger.Warn("failed to persist ticket",
			zap.String("ticket_id", view.ID), zap.Error(err))
	}
}

func (s *Session) publish(ctx context.Context, eventType events.EventType, actorID string, payload interface{}) {
	if s.deps.Dispatcher == nil {
		return
	}
	_ = s.deps.Dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		TenantID:  s.ticket.TenantID,
		TicketID:  s.ticket.ID,
		ActorID:   actorID,
		Timestamp: s.deps.Clock.Now(),
		Payload:   payload,
	})
}
