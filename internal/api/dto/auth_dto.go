package dto

import "time"

// IssueTokenRequest exchanges a tenant integration key for an actor token.
type IssueTokenRequest struct {
	TenantID      string   `json:"tenant_id"`
	APIKey        string   `json:"api_key"`
	ActorID       string   `json:"actor_id"`
	RoleIDs       []string `json:"role_ids"`
	PlatformAdmin bool     `json:"platform_admin"`
}

// IssueTokenResponse carries the signed token.
type IssueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RotateKeyRequest replaces the tenant's integration key.
type RotateKeyRequest struct {
	APIKey string `json:"api_key"`
}
