package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-coordinator/internal/auth"
	"github.com/spec-kit/ticket-coordinator/internal/clock"
	"github.com/spec-kit/ticket-coordinator/internal/domain"
	"github.com/spec-kit/ticket-coordinator/internal/events"
	"github.com/spec-kit/ticket-coordinator/internal/repository"
)

// DefaultLeaderboardLimit bounds leaderboard reads when callers pass no limit.
const DefaultLeaderboardLimit = 20

// PointsService exposes the helper reward economy: balance lookups, the
// leaderboard, and admin point edits.
type PointsService struct {
	tenants    repository.TenantRepository
	ledger     repository.LedgerRepository
	cache      repository.LeaderboardCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
	clock      clock.Clock
}

// PointsDependencies bundles collaborators for the points service.
type PointsDependencies struct {
	TenantRepo repository.TenantRepository
	LedgerRepo repository.LedgerRepository
	Cache      repository.LeaderboardCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      clock.Clock
}

// NewPointsService constructs the service.
func NewPointsService(deps PointsDependencies) *PointsService {
	return &PointsService{
		tenants:    deps.TenantRepo,
		ledger:     deps.LedgerRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		clock:      deps.Clock,
	}
}

// RegisterHandlers subscribes the leaderboard cache to balance-changing
// events so standings stay warm without polling Postgres.
func (s *PointsService) RegisterHandlers() {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Subscribe(events.EventPointsSettled, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.PointsSettledPayload)
		if !ok {
			return nil
		}
		return s.recordBalance(ctx, event.TenantID, payload.HelperID, payload.NewBalance)
	})
	s.dispatcher.Subscribe(events.EventPointsAdjusted, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.PointsAdjustedPayload)
		if !ok {
			return nil
		}
		return s.recordBalance(ctx, event.TenantID, payload.UserID, payload.NewBalance)
	})
}

func (s *PointsService) recordBalance(ctx context.Context, tenantID, userID string, balance int) error {
	if err := s.cache.Record(ctx, tenantID, userID, balance); err != nil {
		s.logger.Warn("leaderboard cache update failed",
			zap.String("tenant_id", tenantID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
	}
	return nil
}

// GetPoints returns a user's balance; users without a row have zero points.
func (s *PointsService) GetPoints(ctx context.Context, tenantID, userID string) (int, error) {
	return s.ledger.GetPoints(ctx, tenantID, userID)
}

// Leaderboard returns the tenant's top balances in descending order. The
// Redis standings are preferred; an empty or failing cache falls back to the
// ledger and backfills.
func (s *PointsService) Leaderboard(ctx context.Context, tenantID string, limit int) ([]domain.PointsEntry, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}

	cached, err := s.cache.Top(ctx, tenantID, limit)
	if err != nil {
		s.logger.Warn("leaderboard cache read failed", zap.String("tenant_id", tenantID), zap.Error(err))
	}
	if len(cached) > 0 {
		return cached, nil
	}

	entries, err := s.ledger.ListPoints(ctx, tenantID, limit)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if err := s.cache.Record(ctx, tenantID, entry.UserID, entry.Points); err != nil {
			s.logger.Warn("leaderboard cache backfill failed", zap.String("tenant_id", tenantID), zap.Error(err))
			break
		}
	}
	return entries, nil
}

// AdjustPoints applies an admin delta to a user's balance and returns the new
// balance. Each adjustment gets its own dedup token so it lands in the
// settlement audit trail alongside ticket rewards.
func (s *PointsService) AdjustPoints(ctx context.Context, actor domain.Actor, tenantID, userID string, delta int) (int, error) {
	if err := s.authorizeAdmin(ctx, actor, tenantID); err != nil {
		return 0, err
	}

	token := fmt.Sprintf("adjust:%s", uuid.NewString())
	balance, err := s.ledger.AddPoints(ctx, tenantID, userID, delta, token)
	if err != nil {
		return 0, err
	}

	s.publishAdjusted(ctx, tenantID, actor.ID, userID, delta, balance)
	return balance, nil
}

// SetPoints overwrites a user's balance.
func (s *PointsService) SetPoints(ctx context.Context, actor domain.Actor, tenantID, userID string, points int) (int, error) {
	if err := s.authorizeAdmin(ctx, actor, tenantID); err != nil {
		return 0, err
	}

	previous, err := s.ledger.GetPoints(ctx, tenantID, userID)
	if err != nil {
		return 0, err
	}
	if err := s.ledger.SetPoints(ctx, tenantID, userID, points); err != nil {
		return 0, err
	}

	s.publishAdjusted(ctx, tenantID, actor.ID, userID, points-previous, points)
	return points, nil
}

// ResetAll clears every balance for the tenant and invalidates the cached
// standings.
func (s *PointsService) ResetAll(ctx context.Context, actor domain.Actor, tenantID string) error {
	if err := s.authorizeAdmin(ctx, actor, tenantID); err != nil {
		return err
	}

	if err := s.ledger.ResetPoints(ctx, tenantID); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, tenantID); err != nil {
		s.logger.Warn("leaderboard cache invalidation failed", zap.String("tenant_id", tenantID), zap.Error(err))
	}
	return nil
}

func (s *PointsService) authorizeAdmin(ctx context.Context, actor domain.Actor, tenantID string) error {
	cfg, err := s.tenants.GetTenantConfig(ctx, tenantID)
	if err != nil {
		return err
	}
	_, err = auth.Authorize(actor, cfg, auth.ActionConfigureTenant)
	return err
}

func (s *PointsService) publishAdjusted(ctx context.Context, tenantID, actorID, userID string, delta, balance int) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventPointsAdjusted,
		TenantID:  tenantID,
		ActorID:   actorID,
		Timestamp: s.clock.Now(),
		Payload: events.PointsAdjustedPayload{
			UserID:     userID,
			Delta:      delta,
			NewBalance: balance,
		},
	})
}
