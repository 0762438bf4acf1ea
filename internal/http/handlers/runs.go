package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runhub-app/runhub/internal/config"
	"github.com/runhub-app/runhub/internal/domain/run"
	"github.com/runhub-app/runhub/internal/http/middlewares"
	"github.com/runhub-app/runhub/internal/repo/postgres"
)

type RunWriter interface {
	Create(ctx context.Context, userID int64, req run.CreateRunRequest) (int64, time.Time, error)
}

type RunReader interface {
	ListByUser(ctx context.Context, userID int64, limit int) ([]run.Run, error)
}

// RankingInvalidator drops any cached leaderboard so the next read sees the
// fresh totals.
type RankingInvalidator interface {
	Invalidate(ctx context.Context)
}

type RunsHandler struct {
	runs    RunReader
	writer  RunWriter
	users   UserReader
	ranking RankingInvalidator
	log     *slog.Logger
}

func NewRunsHandler(runs RunReader, writer RunWriter, users UserReader, ranking RankingInvalidator, log *slog.Logger) *RunsHandler {
	return &RunsHandler{
		runs:    runs,
		writer:  writer,
		users:   users,
		ranking: ranking,
		log:     log,
	}
}

func (h *RunsHandler) SaveRun(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	var req run.CreateRunRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// the token only names an id; confirm the identity still exists before
	// attaching a record to it
	_, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		h.internal(ctx, "save run user check", err)
		return
	}

	id, date, err := h.writer.Create(cctx, userID, req)

	if err != nil {
		h.internal(ctx, "save run", err)
		return
	}

	// the saved run changes the distance totals, so a cached ranking is stale
	if h.ranking != nil {
		h.ranking.Invalidate(cctx)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"runId":   id,
		"date":    date.UTC().Format(time.RFC3339),
	})
}

func (h *RunsHandler) ListRuns(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Authentication required")
		return
	}

	limit := postgres.MaxRunsPerPage

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil || n <= 0 {
			RespondBadRequest(ctx, "limit must be a positive integer")
			return
		}

		if n < limit {
			limit = n
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	runs, err := h.runs.ListByUser(cctx, userID, limit)

	if err != nil {
		h.internal(ctx, "list runs", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"runs":    runs,
	})
}

func (h *RunsHandler) internal(ctx *gin.Context, op string, err error) {
	if h.log != nil {
		h.log.ErrorContext(ctx.Request.Context(), "runs operation failed", "op", op, "err", err)
	}

	RespondInternal(ctx, "Server error: "+err.Error())
}
