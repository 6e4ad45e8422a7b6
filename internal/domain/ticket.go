package domain

import "time"

// TicketState enumerates lifecycle states for help tickets. Transitions only
// move forward: Open -> Closing -> Closed.
type TicketState string

const (
	TicketStateOpen    TicketState = "OPEN"
	TicketStateClosing TicketState = "CLOSING"
	TicketStateClosed  TicketState = "CLOSED"
)

// Ticket is the aggregate for one help request. Points and capacity are
// snapshotted from the catalog at creation; later catalog edits never change
// an open ticket.
type Ticket struct {
	ID           string
	ChannelID    string
	TenantID     string
	RequesterID  string
	TicketType   string
	Capacity     int
	RewardPoints int
	Helpers      []string
	State        TicketState
	CreatedAt    time.Time
}

// HasHelper reports whether the actor currently occupies a slot.
func (t *Ticket) HasHelper(actorID string) bool {
	for _, id := range t.Helpers {
		if id == actorID {
			return true
		}
	}
	return false
}

// RosterSnapshot returns a copy of the helper roster, preserving join order.
func (t *Ticket) RosterSnapshot() []string {
	roster := make([]string, len(t.Helpers))
	copy(roster, t.Helpers)
	return roster
}
