package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-coordinator/internal/auth"
	"github.com/spec-kit/ticket-coordinator/internal/domain"
	"github.com/spec-kit/ticket-coordinator/internal/repository"
)

// TokenService exchanges a tenant integration key for a short-lived actor
// token. The gateway presents the actor's identity and role memberships; the
// key proves the gateway speaks for the tenant.
type TokenService struct {
	tenants repository.TenantRepository
	tokens  *auth.TokenManager
	cost    int
	logger  *zap.Logger
}

// TokenDependencies bundles collaborators for the token service.
type TokenDependencies struct {
	TenantRepo   repository.TenantRepository
	TokenManager *auth.TokenManager
	BcryptCost   int
	Logger       *zap.Logger
}

// IssuedToken is a signed actor token with its expiry.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// NewTokenService constructs the service.
func NewTokenService(deps TokenDependencies) *TokenService {
	return &TokenService{
		tenants: deps.TenantRepo,
		tokens:  deps.TokenManager,
		cost:    deps.BcryptCost,
		logger:  deps.Logger,
	}
}

// IssueToken verifies the integration key and mints a JWT carrying the actor
// identity. An unknown tenant and a wrong key are indistinguishable to the
// caller.
func (s *TokenService) IssueToken(ctx context.Context, tenantID, apiKey string, actor domain.Actor) (IssuedToken, error) {
	hash, err := s.tenants.GetIntegrationKeyHash(ctx, tenantID)
	if errors.Is(err, pgx.ErrNoRows) {
		return IssuedToken{}, domain.ErrAuthorizationDenied
	}
	if err != nil {
		return IssuedToken{}, err
	}
	if err := auth.CompareAPIKey(hash, apiKey); err != nil {
		s.logger.Warn("integration key rejected", zap.String("tenant_id", tenantID))
		return IssuedToken{}, domain.ErrAuthorizationDenied
	}

	token, expiresAt, err := s.tokens.GenerateToken(tenantID, actor.ID, actor.RoleIDs, actor.PlatformAdmin)
	if err != nil {
		return IssuedToken{}, err
	}
	return IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

// RotateIntegrationKey stores the bcrypt hash of a new integration key.
// Admin-gated against the tenant's live configuration.
func (s *TokenService) RotateIntegrationKey(ctx context.Context, actor domain.Actor, tenantID, newKey string) error {
	cfg, err := s.tenants.GetTenantConfig(ctx, tenantID)
	if err != nil {
		return err
	}
	if _, err := auth.Authorize(actor, cfg, auth.ActionConfigureTenant); err != nil {
		return err
	}

	hash, err := auth.HashAPIKey(newKey, s.cost)
	if err != nil {
		return err
	}
	if err := s.tenants.SetIntegrationKeyHash(ctx, tenantID, hash); err != nil {
		return err
	}
	s.logger.Info("integration key rotated", zap.String("tenant_id", tenantID), zap.String("actor_id", actor.ID))
	return nil
}
