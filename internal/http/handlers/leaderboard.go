package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runhub-app/runhub/internal/cache"
	"github.com/runhub-app/runhub/internal/config"
	"github.com/runhub-app/runhub/internal/domain/run"
)

const leaderboardSize = 20

type LeaderboardReader interface {
	Leaderboard(ctx context.Context, limit int) ([]run.LeaderboardEntry, error)
}

type LeaderboardHandler struct {
	runs  LeaderboardReader
	cache *cache.Leaderboard
	log   *slog.Logger
}

func NewLeaderboardHandler(runs LeaderboardReader, lbCache *cache.Leaderboard, log *slog.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		runs:  runs,
		cache: lbCache,
		log:   log,
	}
}

func (h *LeaderboardHandler) Get(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	if entries, ok := h.cache.Get(cctx); ok {
		ctx.JSON(http.StatusOK, gin.H{
			"success": true,
			"leaders": entries,
		})
		return
	}

	entries, err := h.runs.Leaderboard(cctx, leaderboardSize)

	if err != nil {
		if h.log != nil {
			h.log.ErrorContext(ctx.Request.Context(), "leaderboard query failed", "err", err)
		}

		RespondInternal(ctx, "Server error: "+err.Error())
		return
	}

	h.cache.Set(cctx, entries)

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"leaders": entries,
	})
}
