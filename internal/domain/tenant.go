package domain

import "time"

// TenantConfig holds per-tenant role and channel identifiers. Fields are
// optional; an empty ID means the role or channel is unset for the tenant and
// checks against it fail.
type TenantConfig struct {
	TenantID            string
	AdminRoleID         string
	StaffRoleID         string
	HelperRoleID        string
	BlockedRoleID       string
	RewardRoleID        string
	TicketCategoryID    string
	TranscriptChannelID string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// CatalogEntry describes one orderable ticket type.
type CatalogEntry struct {
	Points   int
	Capacity int
}

// ServiceCatalog maps ticket type display names (case sensitive) to their
// reward points and helper slot capacity.
type ServiceCatalog map[string]CatalogEntry

// DefaultSlotCapacity applies when a ticket type has no capacity override.
const DefaultSlotCapacity = 3

// DefaultCatalog returns the built-in service catalog. Tenant overrides are
// layered on top of this by MergeCatalog.
func DefaultCatalog() ServiceCatalog {
	return ServiceCatalog{
		"Ultra Speaker Express":     {Points: 8, Capacity: DefaultSlotCapacity},
		"Ultra Gramiel Express":     {Points: 7, Capacity: DefaultSlotCapacity},
		"4-Man Ultra Daily Express": {Points: 4, Capacity: DefaultSlotCapacity},
		"7-Man Ultra Daily Express": {Points: 7, Capacity: 6},
		"Ultra Weekly Express":      {Points: 12, Capacity: DefaultSlotCapacity},
		"Grim Express":              {Points: 10, Capacity: 6},
		"Daily Temple Express":      {Points: 6, Capacity: DefaultSlotCapacity},
	}
}

// MergeCatalog layers tenant point and slot overrides over the base catalog.
// Overrides for unknown types define new entries; a missing capacity override
// falls back to the base entry's capacity or DefaultSlotCapacity.
func MergeCatalog(base ServiceCatalog, points map[string]int, slots map[string]int) ServiceCatalog {
	merged := make(ServiceCatalog, len(base))
	for name, entry := range base {
		merged[name] = entry
	}
	for name, p := range points {
		entry, ok := merged[name]
		if !ok {
			entry = CatalogEntry{Capacity: DefaultSlotCapacity}
		}
		entry.Points = p
		merged[name] = entry
	}
	for name, s := range slots {
		entry, ok := merged[name]
		if !ok {
			continue
		}
		if s >= 1 {
			entry.Capacity = s
			merged[name] = entry
		}
	}
	return merged
}
