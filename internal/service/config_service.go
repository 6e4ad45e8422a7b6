package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-coordinator/internal/auth"
	"github.com/spec-kit/ticket-coordinator/internal/domain"
	"github.com/spec-kit/ticket-coordinator/internal/repository"
)

// ConfigService manages per-tenant setup: role and channel wiring plus
// catalog overrides. Every mutation is admin-gated.
type ConfigService struct {
	tenants repository.TenantRepository
	logger  *zap.Logger
}

// ConfigDependencies bundles collaborators for the config service.
type ConfigDependencies struct {
	TenantRepo repository.TenantRepository
	Logger     *zap.Logger
}

// TenantSetupInput carries the role and channel IDs an admin assigns during
// setup. Empty fields clear the corresponding assignment.
type TenantSetupInput struct {
	AdminRoleID         string
	StaffRoleID         string
	HelperRoleID        string
	BlockedRoleID       string
	RewardRoleID        string
	TicketCategoryID    string
	TranscriptChannelID string
}

// NewConfigService constructs the service.
func NewConfigService(deps ConfigDependencies) *ConfigService {
	return &ConfigService{tenants: deps.TenantRepo, logger: deps.Logger}
}

// GetTenantConfig returns the tenant's current setup. Reads are admin-gated:
// the setup reveals the tenant's moderation wiring.
func (s *ConfigService) GetTenantConfig(ctx context.Context, actor domain.Actor, tenantID string) (domain.TenantConfig, error) {
	cfg, err := s.tenants.GetTenantConfig(ctx, tenantID)
	if err != nil {
		return domain.TenantConfig{}, err
	}
	if _, err := auth.Authorize(actor, cfg, auth.ActionConfigureTenant); err != nil {
		return domain.TenantConfig{}, err
	}
	return cfg, nil
}

// UpdateTenantConfig replaces the tenant's role and channel wiring.
func (s *ConfigService) UpdateTenantConfig(ctx context.Context, actor domain.Actor, tenantID string, input TenantSetupInput) (domain.TenantConfig, error) {
	current, err := s.tenants.GetTenantConfig(ctx, tenantID)
	if err != nil {
		return domain.TenantConfig{}, err
	}
	if _, err := auth.Authorize(actor, current, auth.ActionConfigureTenant); err != nil {
		return domain.TenantConfig{}, err
	}

	next := domain.TenantConfig{
		TenantID:            tenantID,
		AdminRoleID:         input.AdminRoleID,
		StaffRoleID:         input.StaffRoleID,
		HelperRoleID:        input.HelperRoleID,
		BlockedRoleID:       input.BlockedRoleID,
		RewardRoleID:        input.RewardRoleID,
		TicketCategoryID:    input.TicketCategoryID,
		TranscriptChannelID: input.TranscriptChannelID,
	}
	if err := s.tenants.UpsertTenantConfig(ctx, next); err != nil {
		return domain.TenantConfig{}, err
	}

	s.logger.Info("tenant setup updated",
		zap.String("tenant_id", tenantID),
		zap.String("actor_id", actor.ID),
	)
	return next, nil
}

// ResetTenantConfig removes the tenant's setup and catalog overrides,
// returning it to the built-in defaults.
func (s *ConfigService) ResetTenantConfig(ctx context.Context, actor domain.Actor, tenantID string) error {
	current, err := s.tenants.GetTenantConfig(ctx, tenantID)
	if err != nil {
		return err
	}
	if _, err := auth.Authorize(actor, current, auth.ActionConfigureTenant); err != nil {
		return err
	}

	if err := s.tenants.ResetTenantConfig(ctx, tenantID); err != nil {
		return err
	}
	s.logger.Info("tenant setup reset", zap.String("tenant_id", tenantID), zap.String("actor_id", actor.ID))
	return nil
}

// GetServiceCatalog returns the tenant's effective catalog. Catalog reads are
// open to any actor; the panel needs them to render.
func (s *ConfigService) GetServiceCatalog(ctx context.Context, tenantID string) (domain.ServiceCatalog, error) {
	return s.tenants.GetServiceCatalog(ctx, tenantID)
}

// SetCatalogPoints replaces the tenant's reward overrides. Snapshotting at
// ticket creation means open tickets keep their original points.
func (s *ConfigService) SetCatalogPoints(ctx context.Context, actor domain.Actor, tenantID string, points map[string]int) error {
	if err := s.authorizeAdmin(ctx, actor, tenantID); err != nil {
		return err
	}
	return s.tenants.SetCatalogPoints(ctx, tenantID, points)
}

// SetCatalogSlots replaces the tenant's capacity overrides. Values below one
// are ignored at merge time.
func (s *ConfigService) SetCatalogSlots(ctx context.Context, actor domain.Actor, tenantID string, slots map[string]int) error {
	if err := s.authorizeAdmin(ctx, actor, tenantID); err != nil {
		return err
	}
	return s.tenants.SetCatalogSlots(ctx, tenantID, slots)
}

func (s *ConfigService) authorizeAdmin(ctx context.Context, actor domain.Actor, tenantID string) error {
	cfg, err := s.tenants.GetTenantConfig(ctx, tenantID)
	if err != nil {
		return err
	}
	_, err = auth.Authorize(actor, cfg, auth.ActionConfigureTenant)
	return err
}
