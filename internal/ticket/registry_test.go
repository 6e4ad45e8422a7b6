package ticket

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
)

func TestRegistryCreateTicket(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("snapshots catalog values", func(t *testing.T) {
		env := newTestEnv()
		created := mustCreate(t, env, "Grim Express")

		if created.State != domain.TicketStateOpen {
			t.Fatalf("expected Open, got %s", created.State)
		}
		if created.Capacity != 6 || created.RewardPoints != 10 {
			t.Fatalf("expected capacity 6 points 10, got %d/%d", created.Capacity, created.RewardPoints)
		}
		if len(created.Helpers) != 0 {
			t.Fatalf("expected empty roster, got %v", created.Helpers)
		}
		if !env.store.has(created.ChannelID) {
			t.Fatalf("expected ticket persisted")
		}
	})

	t.Run("defaults capacity when catalog omits it", func(t *testing.T) {
		env := newTestEnv()
		env.settings.catalog = domain.ServiceCatalog{"Custom Run": {Points: 5}}

		created := mustCreate(t, env, "Custom Run")
		if created.Capacity != domain.DefaultSlotCapacity {
			t.Fatalf("expected default capacity %d, got %d", domain.DefaultSlotCapacity, created.Capacity)
		}
	})

	t.Run("unknown ticket type", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.registry.CreateTicket(ctx, "tenant-1", domain.Actor{ID: "r"}, "No Such Service")
		if !errors.Is(err, domain.ErrUnknownTicketType) {
			t.Fatalf("expected ErrUnknownTicketType, got %v", err)
		}
	})

	t.Run("ticket type keys are case sensitive", func(t *testing.T) {
		env := newTestEnv()
		_, err := env.registry.CreateTicket(ctx, "tenant-1", domain.Actor{ID: "r"}, "grim express")
		if !errors.Is(err, domain.ErrUnknownTicketType) {
			t.Fatalf("expected ErrUnknownTicketType, got %v", err)
		}
	})

	t.Run("blocked actor cannot create", func(t *testing.T) {
		env := newTestEnv()
		blocked := domain.Actor{ID: "b", RoleIDs: []string{"role-blocked"}}
		_, err := env.registry.CreateTicket(ctx, "tenant-1", blocked, "Grim Express")
		if !errors.Is(err, domain.ErrAuthorizationDenied) {
			t.Fatalf("expected ErrAuthorizationDenied, got %v", err)
		}
	})

	t.Run("channel creation failure persists nothing", func(t *testing.T) {
		env := newTestEnv()
		env.gateway.createErr = errors.New("gateway down")

		_, err := env.registry.CreateTicket(ctx, "tenant-1", domain.Actor{ID: "r"}, "Grim Express")
		if !domain.IsCollaboratorError(err) {
			t.Fatalf("expected CollaboratorError, got %v", err)
		}
		if env.registry.Len() != 0 {
			t.Fatalf("expected no session registered")
		}
		rows, _ := env.store.ListActiveTickets(ctx)
		if len(rows) != 0 {
			t.Fatalf("expected nothing persisted, got %d rows", len(rows))
		}
	})

	t.Run("save failure rolls the channel back", func(t *testing.T) {
		env := newTestEnv()
		env.store.saveErr = errors.New("db down")

		_, err := env.registry.CreateTicket(ctx, "tenant-1", domain.Actor{ID: "r"}, "Grim Express")
		if !domain.IsCollaboratorError(err) {
			t.Fatalf("expected CollaboratorError, got %v", err)
		}
		if len(env.gateway.deletedChannels) != 1 {
			t.Fatalf("expected rollback deletion, got %v", env.gateway.deletedChannels)
		}
	})
}

func TestRegistryRouting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("unknown channel", func(t *testing.T) {
		env := newTestEnv()
		if _, err := env.registry.JoinSlot(ctx, "chan-missing", helperActor("h1")); !errors.Is(err, domain.ErrNoSuchTicket) {
			t.Fatalf("expected ErrNoSuchTicket, got %v", err)
		}
		if _, err := env.registry.CloseTicket(ctx, "chan-missing", staffActor("s1")); !errors.Is(err, domain.ErrNoSuchTicket) {
			t.Fatalf("expected ErrNoSuchTicket, got %v", err)
		}
	})

	t.Run("routes to the addressed session", func(t *testing.T) {
		env := newTestEnv()
		first := mustCreate(t, env, "Grim Express")
		second := mustCreate(t, env, "Daily Temple Express")

		env.registry.JoinSlot(ctx, first.ChannelID, helperActor("h1"))
		viewFirst, _ := env.registry.GetTicket(first.ChannelID)
		viewSecond, _ := env.registry.GetTicket(second.ChannelID)
		if len(viewFirst.Helpers) != 1 || len(viewSecond.Helpers) != 0 {
			t.Fatalf("join leaked across sessions: %v / %v", viewFirst.Helpers, viewSecond.Helpers)
		}
	})
}

func TestRegistryRehydrate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	env := newTestEnv()
	created := mustCreate(t, env, "Grim Express")
	env.registry.JoinSlot(ctx, created.ChannelID, helperActor("h1"))

	// A new registry over the same store picks the session back up with its
	// roster intact.
	fresh := NewRegistry(env.registry.deps)
	if err := fresh.Rehydrate(ctx); err != nil {
		t.Fatalf("rehydrate: %v", err)
	}
	view, err := fresh.GetTicket(created.ChannelID)
	if err != nil {
		t.Fatalf("get after rehydrate: %v", err)
	}
	if view.State != domain.TicketStateOpen {
		t.Fatalf("expected Open, got %s", view.State)
	}
	if len(view.Helpers) != 1 || view.Helpers[0] != "h1" {
		t.Fatalf("expected roster [h1], got %v", view.Helpers)
	}

	if _, err := fresh.CloseTicket(ctx, created.ChannelID, staffActor("s1")); err != nil {
		t.Fatalf("close rehydrated ticket: %v", err)
	}
	if env.ledger.balance("tenant-1", "h1") != 10 {
		t.Fatalf("expected settlement after rehydrated close")
	}
}
