package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/runhub-app/runhub/internal/domain/run"
)

const leaderboardKey = "leaderboard:distance"

// Leaderboard caches the computed ranking in redis for a short window.
// Every method tolerates a missing or unreachable redis: a failed read is a
// miss and a failed write is dropped, the DB stays the source of truth.
type Leaderboard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLeaderboard(rdb *redis.Client, ttl time.Duration) *Leaderboard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Leaderboard{
		rdb: rdb,
		ttl: ttl,
	}
}

func (l *Leaderboard) Get(ctx context.Context) ([]run.LeaderboardEntry, bool) {
	if l == nil || l.rdb == nil {
		return nil, false
	}

	raw, err := l.rdb.Get(ctx, leaderboardKey).Bytes()

	if err != nil {
		return nil, false
	}

	var entries []run.LeaderboardEntry

	err = json.Unmarshal(raw, &entries)

	if err != nil {
		return nil, false
	}

	return entries, true
}

func (l *Leaderboard) Set(ctx context.Context, entries []run.LeaderboardEntry) {
	if l == nil || l.rdb == nil {
		return
	}

	raw, err := json.Marshal(entries)

	if err != nil {
		return
	}

	_ = l.rdb.Set(ctx, leaderboardKey, raw, l.ttl).Err()
}

func (l *Leaderboard) Invalidate(ctx context.Context) {
	if l == nil || l.rdb == nil {
		return
	}

	_ = l.rdb.Del(ctx, leaderboardKey).Err()
}
