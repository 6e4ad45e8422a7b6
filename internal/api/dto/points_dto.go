package dto

import "github.com/spec-kit/ticket-coordinator/internal/domain"

// PointsResponse reports one user's balance.
type PointsResponse struct {
	UserID string `json:"user_id"`
	Points int    `json:"points"`
}

// AdjustPointsRequest payload for admin delta edits.
type AdjustPointsRequest struct {
	Delta int `json:"delta"`
}

// SetPointsRequest payload for admin overwrites.
type SetPointsRequest struct {
	Points int `json:"points"`
}

// LeaderboardResponse lists top balances in descending order.
type LeaderboardResponse struct {
	Entries []PointsResponse `json:"entries"`
}

// LeaderboardFromEntries maps ledger entries to the response shape.
func LeaderboardFromEntries(entries []domain.PointsEntry) LeaderboardResponse {
	out := make([]PointsResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, PointsResponse{UserID: entry.UserID, Points: entry.Points})
	}
	return LeaderboardResponse{Entries: out}
}
