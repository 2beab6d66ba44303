package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"team-taskboard/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	leaderboardDefaultLimit = 100
	leaderboardMaxLimit     = 1000
	leaderboardCacheTTL     = 30 * time.Second
)

// LeaderboardEntry is one ranked row of standings.
type LeaderboardEntry struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	TotalPoints int64  `json:"total_points"`
}

// LeaderboardService computes standings by summing the ledger. Redis is an
// optional short-TTL read cache; when it is nil or failing, every read
// falls through to the store.
type LeaderboardService struct {
	DB    *gorm.DB
	Guard *Guard
	Redis *redis.Client
}

func NewLeaderboardService(db *gorm.DB, guard *Guard, rdb *redis.Client) *LeaderboardService {
	return &LeaderboardService{DB: db, Guard: guard, Redis: rdb}
}

// ClampLimit parses a raw limit query value. Non-numeric input falls back
// to 100; numeric input is clamped to [1, 1000].
func ClampLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return leaderboardDefaultLimit
	}
	if n < 1 {
		return 1
	}
	if n > leaderboardMaxLimit {
		return leaderboardMaxLimit
	}
	return n
}

// GetLeaderboard returns up to limit users ordered by summed ledger points
// descending, ties broken by user id so pagination stays deterministic.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, actor Identity, limit int) ([]LeaderboardEntry, error) {
	if err := s.Guard.Authorize(actor, ActionLeaderboardRead, nil); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = 1
	}
	if limit > leaderboardMaxLimit {
		limit = leaderboardMaxLimit
	}

	cacheKey := fmt.Sprintf("leaderboard:%d", limit)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil {
			var entries []LeaderboardEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		}
	}

	var entries []LeaderboardEntry
	err := s.DB.Raw(`
		SELECT u.id AS user_id, u.display_name, COALESCE(SUM(p.points_earned), 0) AS total_points
		FROM users u
		LEFT JOIN points_history p ON p.user_id = u.id
		GROUP BY u.id, u.display_name
		ORDER BY total_points DESC, u.id ASC
		LIMIT ?
	`, limit).Scan(&entries).Error
	if err != nil {
		return nil, storeErr(err)
	}

	if s.Redis != nil {
		if data, err := json.Marshal(entries); err == nil {
			if err := s.Redis.Set(ctx, cacheKey, data, leaderboardCacheTTL).Err(); err != nil {
				logger.Error.Warn("leaderboard cache write failed", zap.Error(err))
			}
		}
	}

	return entries, nil
}
