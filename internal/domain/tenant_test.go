package domain

import "testing"

func TestMergeCatalogLayersOverrides(t *testing.T) {
	t.Parallel()

	merged := MergeCatalog(DefaultCatalog(),
		map[string]int{"Grim Express": 20, "Raid Night": 30},
		map[string]int{"Grim Express": 4, "Ultra Weekly Express": 0},
	)

	if entry := merged["Grim Express"]; entry.Points != 20 || entry.Capacity != 4 {
		t.Fatalf("expected 20/4, got %+v", entry)
	}
	// New type from a points override gets the default capacity.
	if entry := merged["Raid Night"]; entry.Points != 30 || entry.Capacity != DefaultSlotCapacity {
		t.Fatalf("expected 30/%d, got %+v", DefaultSlotCapacity, entry)
	}
	// Capacity overrides below one are ignored.
	if entry := merged["Ultra Weekly Express"]; entry.Capacity != DefaultSlotCapacity {
		t.Fatalf("expected default capacity kept, got %+v", entry)
	}
	// Slot overrides for unknown types define nothing.
	base := DefaultCatalog()
	mergedSlotsOnly := MergeCatalog(base, nil, map[string]int{"Ghost Type": 5})
	if _, ok := mergedSlotsOnly["Ghost Type"]; ok {
		t.Fatal("slot override alone must not create an entry")
	}
}

func TestMergeCatalogDoesNotMutateBase(t *testing.T) {
	t.Parallel()

	base := DefaultCatalog()
	_ = MergeCatalog(base, map[string]int{"Grim Express": 99}, nil)
	if base["Grim Express"].Points != 10 {
		t.Fatalf("base catalog mutated: %+v", base["Grim Express"])
	}
}

func TestHasHelperAndRosterSnapshot(t *testing.T) {
	t.Parallel()

	ticket := &Ticket{Helpers: []string{"h1", "h2"}}
	if !ticket.HasHelper("h1") || ticket.HasHelper("h3") {
		t.Fatal("HasHelper misreported membership")
	}

	snapshot := ticket.RosterSnapshot()
	snapshot[0] = "mutated"
	if ticket.Helpers[0] != "h1" {
		t.Fatal("snapshot aliases the live roster")
	}
}

func TestActorHasRoleIgnoresUnsetRole(t *testing.T) {
	t.Parallel()

	actor := Actor{ID: "u1", RoleIDs: []string{"", "role-a"}}
	if actor.HasRole("") {
		t.Fatal("empty role ID must never match")
	}
	if !actor.HasRole("role-a") {
		t.Fatal("expected role-a membership")
	}
}
