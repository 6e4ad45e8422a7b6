package domain

// PointsEntry is one row of a tenant's helper leaderboard.
type PointsEntry struct {
	UserID string
	Points int
}
