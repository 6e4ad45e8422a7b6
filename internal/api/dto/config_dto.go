package dto

import "github.com/spec-kit/ticket-coordinator/internal/domain"

// TenantSetupRequest payload. Empty fields clear the assignment.
type TenantSetupRequest struct {
	AdminRoleID         string `json:"admin_role_id"`
	StaffRoleID         string `json:"staff_role_id"`
	HelperRoleID        string `json:"helper_role_id"`
	BlockedRoleID       string `json:"blocked_role_id"`
	RewardRoleID        string `json:"reward_role_id"`
	TicketCategoryID    string `json:"ticket_category_id"`
	TranscriptChannelID string `json:"transcript_channel_id"`
}

// TenantConfigResponse reports the tenant's current wiring.
type TenantConfigResponse struct {
	TenantID            string `json:"tenant_id"`
	AdminRoleID         string `json:"admin_role_id"`
	StaffRoleID         string `json:"staff_role_id"`
	HelperRoleID        string `json:"helper_role_id"`
	BlockedRoleID       string `json:"blocked_role_id"`
	RewardRoleID        string `json:"reward_role_id"`
	TicketCategoryID    string `json:"ticket_category_id"`
	TranscriptChannelID string `json:"transcript_channel_id"`
}

// CatalogEntryResponse is one orderable ticket type.
type CatalogEntryResponse struct {
	TicketType string `json:"ticket_type"`
	Points     int    `json:"points"`
	Capacity   int    `json:"capacity"`
}

// CatalogOverridesRequest replaces per-type overrides.
type CatalogOverridesRequest struct {
	Points map[string]int `json:"points,omitempty"`
	Slots  map[string]int `json:"slots,omitempty"`
}

// TenantConfigFromDomain maps the domain config to its response shape.
func TenantConfigFromDomain(cfg domain.TenantConfig) TenantConfigResponse {
	return TenantConfigResponse{
		TenantID:            cfg.TenantID,
		AdminRoleID:         cfg.AdminRoleID,
		StaffRoleID:         cfg.StaffRoleID,
		HelperRoleID:        cfg.HelperRoleID,
		BlockedRoleID:       cfg.BlockedRoleID,
		RewardRoleID:        cfg.RewardRoleID,
		TicketCategoryID:    cfg.TicketCategoryID,
		TranscriptChannelID: cfg.TranscriptChannelID,
	}
}

// CatalogFromDomain maps the catalog to a stable response list.
func CatalogFromDomain(catalog domain.ServiceCatalog) []CatalogEntryResponse {
	entries := make([]CatalogEntryResponse, 0, len(catalog))
	for name, entry := range catalog {
		entries = append(entries, CatalogEntryResponse{
			TicketType: name,
			Points:     entry.Points,
			Capacity:   entry.Capacity,
		})
	}
	return entries
}
