package ticket

import (
	"context"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
)

// SettingsStore is the read-only per-tenant configuration lookup.
type SettingsStore interface {
	GetTenantConfig(ctx context.Context, tenantID string) (domain.TenantConfig, error)
	GetServiceCatalog(ctx context.Context, tenantID string) (domain.ServiceCatalog, error)
}

// TicketStore persists live tickets so open sessions survive a restart.
type TicketStore interface {
	SaveTicket(ctx context.Context, t *domain.Ticket) error
	UpdateTicket(ctx context.Context, t *domain.Ticket) error
	DeleteTicket(ctx context.Context, channelID string) error
	ListActiveTickets(ctx context.Context) ([]domain.Ticket, error)
}

// EffectEnqueuer hands permission side effects to the retrying executor. The
// in-memory roster is the source of truth; the enqueued effect is retried
// until acknowledged or abandoned with a logged warning.
type EffectEnqueuer interface {
	EnqueuePermission(channelID, actorID string, view, send bool)
}
