package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
)

// LedgerRepository stores helper point balances and the settlement rows that
// make reward crediting idempotent.
type LedgerRepository interface {
	// AddPoints credits amount to a user exactly once per dedup token and
	// returns the resulting balance. A replayed token leaves the balance
	// untouched.
	AddPoints(ctx context.Context, tenantID, userID string, amount int, dedupToken string) (int, error)
	SetPoints(ctx context.Context, tenantID, userID string, points int) error
	GetPoints(ctx context.Context, tenantID, userID string) (int, error)
	ListPoints(ctx context.Context, tenantID string, limit int) ([]domain.PointsEntry, error)
	ResetPoints(ctx context.Context, tenantID string) error
}

type ledgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository instantiates repository.
func NewLedgerRepository(pool *pgxpool.Pool) LedgerRepository {
	return &ledgerRepository{pool: pool}
}

func (r *ledgerRepository) AddPoints(ctx context.Context, tenantID, userID string, amount int, dedupToken string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertSettlement = `
        INSERT INTO settlements (dedup_token, tenant_id, user_id, amount)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (dedup_token) DO NOTHING`
	tag, err := tx.Exec(ctx, insertSettlement, dedupToken, tenantID, userID, amount)
	if err != nil {
		return 0, err
	}

	if tag.RowsAffected() > 0 {
		const upsertBalance = `
            INSERT INTO user_points (tenant_id, user_id, points)
            VALUES ($1,$2,$3)
            ON CONFLICT (tenant_id, user_id)
            DO UPDATE SET points = user_points.points + EXCLUDED.points, updated_at=NOW()`
		if _, err := tx.Exec(ctx, upsertBalance, tenantID, userID, amount); err != nil {
			return 0, err
		}
	}

	var balance int
	const selectBalance = `SELECT points FROM user_points WHERE tenant_id=$1 AND user_id=$2`
	if err := tx.QueryRow(ctx, selectBalance, tenantID, userID).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			balance = 0
		} else {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return balance, nil
}

func (r *ledgerRepository) SetPoints(ctx context.Context, tenantID, userID string, points int) error {
	const query = `
        INSERT INTO user_points (tenant_id, user_id, points)
        VALUES ($1,$2,$3)
        ON CONFLICT (tenant_id, user_id)
        DO UPDATE SET points=EXCLUDED.points, updated_at=NOW()`
	_, err := r.pool.Exec(ctx, query, tenantID, userID, points)
	return err
}

// GetPoints returns the user's balance; a user with no row has zero points.
func (r *ledgerRepository) GetPoints(ctx context.Context, tenantID, userID string) (int, error) {
	const query = `SELECT points FROM user_points WHERE tenant_id=$1 AND user_id=$2`
	var points int
	err := r.pool.QueryRow(ctx, query, tenantID, userID).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return points, nil
}

func (r *ledgerRepository) ListPoints(ctx context.Context, tenantID string, limit int) ([]domain.PointsEntry, error) {
	const query = `
        SELECT user_id, points FROM user_points
        WHERE tenant_id=$1
        ORDER BY points DESC, user_id ASC
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PointsEntry
	for rows.Next() {
		var entry domain.PointsEntry
		if err := rows.Scan(&entry.UserID, &entry.Points); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *ledgerRepository) ResetPoints(ctx context.Context, tenantID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_points WHERE tenant_id=$1`, tenantID)
	return err
}
