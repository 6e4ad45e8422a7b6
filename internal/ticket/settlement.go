package ticket

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
)

// Ledger is the points-ledger collaborator. AddPoints must apply the
// increment at most once per dedup token regardless of retries.
type Ledger interface {
	AddPoints(ctx context.Context, tenantID, userID string, amount int, dedupToken string) (newBalance int, err error)
}

// Award records one helper's settled reward.
type Award struct {
	HelperID   string
	Points     int
	NewBalance int
}

// SettlementResult reports the awards applied (or re-confirmed) by a Settle
// call.
type SettlementResult struct {
	Awards []Award
}

// Settler credits reward points to a ticket's frozen roster exactly once.
type Settler struct {
	ledger Ledger
	logger *zap.Logger
}

// NewSettler constructs a settler.
func NewSettler(ledger Ledger, logger *zap.Logger) *Settler {
	return &Settler{ledger: ledger, logger: logger}
}

// Settle awards the ticket's reward points to every helper in roster. The
// dedup token is derived from (ticket, helper), so retrying after a partial
// failure never double-awards a helper already credited. An empty roster is
// a valid no-op.
func (s *Settler) Settle(ctx context.Context, t *domain.Ticket, roster []string) (SettlementResult, error) {
	result := SettlementResult{Awards: make([]Award, 0, len(roster))}
	for _, helperID := range roster {
		balance, err := s.ledger.AddPoints(ctx, t.TenantID, helperID, t.RewardPoints, DedupToken(t.ID, helperID))
		if err != nil {
			s.logger.Error("settlement failed",
				zap.String("ticket_id", t.ID),
				zap.String("helper_id", helperID),
				zap.Error(err))
			return result, domain.NewCollaboratorError("ledger add points", err)
		}
		result.Awards = append(result.Awards, Award{
			HelperID:   helperID,
			Points:     t.RewardPoints,
			NewBalance: balance,
		})
	}
	return result, nil
}

// DedupToken is the idempotency key for one helper's award on one ticket.
func DedupToken(ticketID, helperID string) string {
	return ticketID + ":" + helperID
}
