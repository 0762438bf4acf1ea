package cache

import (
	"context"
	"testing"

	"github.com/runhub-app/runhub/internal/domain/run"
)

// Without a redis client the cache must degrade to a no-op, not panic.
func TestLeaderboard_NoRedisIsMissTolerant(t *testing.T) {
	lb := NewLeaderboard(nil, 0)
	ctx := context.Background()

	if _, ok := lb.Get(ctx); ok {
		t.Fatalf("nil-client cache reported a hit")
	}

	lb.Set(ctx, []run.LeaderboardEntry{{UserID: 1, Name: "A"}})
	lb.Invalidate(ctx)

	var nilCache *Leaderboard

	if _, ok := nilCache.Get(ctx); ok {
		t.Fatalf("nil cache reported a hit")
	}

	nilCache.Set(ctx, nil)
}
