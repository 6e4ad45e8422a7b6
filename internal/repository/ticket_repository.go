package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
)

// TicketRepository persists live tickets keyed by channel so open sessions can
// be rehydrated after a restart. Closed tickets are removed, not archived.
type TicketRepository interface {
	SaveTicket(ctx context.Context, t *domain.Ticket) error
	UpdateTicket(ctx context.Context, t *domain.Ticket) error
	DeleteTicket(ctx context.Context, channelID string) error
	ListActiveTickets(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) SaveTicket(ctx context.Context, t *domain.Ticket) error {
	const query = `
        INSERT INTO active_tickets (channel_id, ticket_id, tenant_id, requester_id,
            ticket_type, capacity, reward_points, helpers, state, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err := r.pool.Exec(ctx, query,
		t.ChannelID,
		t.ID,
		t.TenantID,
		t.RequesterID,
		t.TicketType,
		t.Capacity,
		t.RewardPoints,
		t.Helpers,
		string(t.State),
		t.CreatedAt,
	)
	return err
}

func (r *ticketRepository) UpdateTicket(ctx context.Context, t *domain.Ticket) error {
	const query = `
        UPDATE active_tickets
        SET helpers=$2, state=$3
        WHERE channel_id=$1`
	tag, err := r.pool.Exec(ctx, query, t.ChannelID, t.Helpers, string(t.State))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) DeleteTicket(ctx context.Context, channelID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM active_tickets WHERE channel_id=$1`, channelID)
	return err
}

func (r *ticketRepository) ListActiveTickets(ctx context.Context) ([]domain.Ticket, error) {
	const query = `
        SELECT channel_id, ticket_id, tenant_id, requester_id, ticket_type,
               capacity, reward_points, helpers, state, created_at
        FROM active_tickets
        ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		var t domain.Ticket
		var state string
		if err := rows.Scan(
			&t.ChannelID,
			&t.ID,
			&t.TenantID,
			&t.RequesterID,
			&t.TicketType,
			&t.Capacity,
			&t.RewardPoints,
			&t.Helpers,
			&state,
			&t.CreatedAt,
		); err != nil {
			return nil, err
		}
		t.State = domain.TicketState(state)
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}
