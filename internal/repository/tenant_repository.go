package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
)

// TenantRepository encapsulates per-tenant settings persistence: role and
// channel wiring, catalog overrides, and the integration key hash.
type TenantRepository interface {
	GetTenantConfig(ctx context.Context, tenantID string) (domain.TenantConfig, error)
	UpsertTenantConfig(ctx context.Context, cfg domain.TenantConfig) error
	ResetTenantConfig(ctx context.Context, tenantID string) error
	GetServiceCatalog(ctx context.Context, tenantID string) (domain.ServiceCatalog, error)
	SetCatalogPoints(ctx context.Context, tenantID string, points map[string]int) error
	SetCatalogSlots(ctx context.Context, tenantID string, slots map[string]int) error
	GetIntegrationKeyHash(ctx context.Context, tenantID string) (string, error)
	SetIntegrationKeyHash(ctx context.Context, tenantID, hash string) error
}

type tenantRepository struct {
	pool *pgxpool.Pool
}

// NewTenantRepository instantiates repository.
func NewTenantRepository(pool *pgxpool.Pool) TenantRepository {
	return &tenantRepository{pool: pool}
}

// GetTenantConfig returns the tenant's configuration. A tenant with no row
// yet gets a zero-value config: every role and channel unset.
func (r *tenantRepository) GetTenantConfig(ctx context.Context, tenantID string) (domain.TenantConfig, error) {
	const query = `
        SELECT tenant_id, admin_role_id, staff_role_id, helper_role_id, blocked_role_id,
               reward_role_id, ticket_category_id, transcript_channel_id, created_at, updated_at
        FROM tenant_config WHERE tenant_id=$1`

	var cfg domain.TenantConfig
	err := r.pool.QueryRow(ctx, query, tenantID).Scan(
		&cfg.TenantID,
		&cfg.AdminRoleID,
		&cfg.StaffRoleID,
		&cfg.HelperRoleID,
		&cfg.BlockedRoleID,
		&cfg.RewardRoleID,
		&cfg.TicketCategoryID,
		&cfg.TranscriptChannelID,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.TenantConfig{TenantID: tenantID}, nil
	}
	if err != nil {
		return domain.TenantConfig{}, err
	}
	return cfg, nil
}

func (r *tenantRepository) UpsertTenantConfig(ctx context.Context, cfg domain.TenantConfig) error {
	const query = `
        INSERT INTO tenant_config (tenant_id, admin_role_id, staff_role_id, helper_role_id,
            blocked_role_id, reward_role_id, ticket_category_id, transcript_channel_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (tenant_id) DO UPDATE SET
            admin_role_id=EXCLUDED.admin_role_id,
            staff_role_id=EXCLUDED.staff_role_id,
            helper_role_id=EXCLUDED.helper_role_id,
            blocked_role_id=EXCLUDED.blocked_role_id,
            reward_role_id=EXCLUDED.reward_role_id,
            ticket_category_id=EXCLUDED.ticket_category_id,
            transcript_channel_id=EXCLUDED.transcript_channel_id,
            updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query,
		cfg.TenantID,
		cfg.AdminRoleID,
		cfg.StaffRoleID,
		cfg.HelperRoleID,
		cfg.BlockedRoleID,
		cfg.RewardRoleID,
		cfg.TicketCategoryID,
		cfg.TranscriptChannelID,
	)
	return err
}

func (r *tenantRepository) ResetTenantConfig(ctx context.Context, tenantID string) error {
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM tenant_config WHERE tenant_id=$1`, tenantID)
	batch.Queue(`DELETE FROM catalog_points WHERE tenant_id=$1`, tenantID)
	batch.Queue(`DELETE FROM catalog_slots WHERE tenant_id=$1`, tenantID)
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < 3; i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// GetServiceCatalog returns the effective catalog: built-in defaults with the
// tenant's point and slot overrides layered on top.
func (r *tenantRepository) GetServiceCatalog(ctx context.Context, tenantID string) (domain.ServiceCatalog, error) {
	points, err := r.readOverrides(ctx, `SELECT ticket_type, points FROM catalog_points WHERE tenant_id=$1`, tenantID)
	if err != nil {
		return nil, err
	}
	slots, err := r.readOverrides(ctx, `SELECT ticket_type, slots FROM catalog_slots WHERE tenant_id=$1`, tenantID)
	if err != nil {
		return nil, err
	}
	return domain.MergeCatalog(domain.DefaultCatalog(), points, slots), nil
}

func (r *tenantRepository) readOverrides(ctx context.Context, query, tenantID string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var ticketType string
		var value int
		if err := rows.Scan(&ticketType, &value); err != nil {
			return nil, err
		}
		out[ticketType] = value
	}
	return out, rows.Err()
}

func (r *tenantRepository) SetCatalogPoints(ctx context.Context, tenantID string, points map[string]int) error {
	return r.replaceOverrides(ctx, tenantID, "catalog_points", "points", points)
}

func (r *tenantRepository) SetCatalogSlots(ctx context.Context, tenantID string, slots map[string]int) error {
	return r.replaceOverrides(ctx, tenantID, "catalog_slots", "slots", slots)
}

func (r *tenantRepository) replaceOverrides(ctx context.Context, tenantID, table, column string, values map[string]int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE tenant_id=$1`, tenantID); err != nil {
		return err
	}
	for ticketType, value := range values {
		if _, err := tx.Exec(ctx,
			`INSERT INTO `+table+` (tenant_id, ticket_type, `+column+`) VALUES ($1,$2,$3)`,
			tenantID, ticketType, value,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *tenantRepository) GetIntegrationKeyHash(ctx context.Context, tenantID string) (string, error) {
	const query = `SELECT api_key_hash FROM tenant_integrations WHERE tenant_id=$1`
	var hash string
	if err := r.pool.QueryRow(ctx, query, tenantID).Scan(&hash); err != nil {
		return "", err
	}
	return hash, nil
}

func (r *tenantRepository) SetIntegrationKeyHash(ctx context.Context, tenantID, hash string) error {
	const query = `
        INSERT INTO tenant_integrations (tenant_id, api_key_hash)
        VALUES ($1,$2)
        ON CONFLICT (tenant_id) DO UPDATE SET api_key_hash=EXCLUDED.api_key_hash, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, tenantID, hash)
	return err
}
