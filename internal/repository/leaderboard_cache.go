package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/ticket-coordinator/internal/domain"
)

// LeaderboardCache keeps per-tenant point standings in a sorted set so
// leaderboard reads skip Postgres. The cache is advisory; Postgres stays the
// source of truth and a miss falls back to the ledger.
type LeaderboardCache interface {
	Record(ctx context.Context, tenantID, userID string, balance int) error
	Top(ctx context.Context, tenantID string, limit int) ([]domain.PointsEntry, error)
	Invalidate(ctx context.Context, tenantID string) error
}

type redisLeaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache builds a Redis-backed cache. A nil client yields a
// cache whose reads always miss.
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &redisLeaderboardCache{client: client}
}

func leaderboardKey(tenantID string) string {
	return fmt.Sprintf("leaderboard:%s", tenantID)
}

// Record stores the user's current balance. Balances are absolute, so a
// replayed event overwrites rather than double-counts.
func (c *redisLeaderboardCache) Record(ctx context.Context, tenantID, userID string, balance int) error {
	if c.client == nil {
		return nil
	}
	return c.client.ZAdd(ctx, leaderboardKey(tenantID), redis.Z{
		Score:  float64(balance),
		Member: userID,
	}).Err()
}

func (c *redisLeaderboardCache) Top(ctx context.Context, tenantID string, limit int) ([]domain.PointsEntry, error) {
	if c.client == nil {
		return nil, nil
	}
	members, err := c.client.ZRevRangeWithScores(ctx, leaderboardKey(tenantID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.PointsEntry, 0, len(members))
	for _, m := range members {
		userID, ok := m.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, domain.PointsEntry{UserID: userID, Points: int(m.Score)})
	}
	return entries, nil
}

func (c *redisLeaderboardCache) Invalidate(ctx context.Context, tenantID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, leaderboardKey(tenantID)).Err()
}
