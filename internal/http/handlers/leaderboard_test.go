package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/runhub-app/runhub/internal/domain/run"
	"github.com/runhub-app/runhub/internal/http/handlers"
)

type fakeLeaderboard struct {
	entries []run.LeaderboardEntry
	err     error
	calls   int
}

func (f *fakeLeaderboard) Leaderboard(_ context.Context, limit int) ([]run.LeaderboardEntry, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	if len(f.entries) > limit {
		return f.entries[:limit], nil
	}

	return f.entries, nil
}

func TestLeaderboard_ServesRankingWithoutCache(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reader := &fakeLeaderboard{
		entries: []run.LeaderboardEntry{
			{UserID: 1, Name: "A", TotalDistance: 42.5, RunCount: 7},
			{UserID: 2, Name: "B", TotalDistance: 12.1, RunCount: 3},
		},
	}

	r := gin.New()
	// nil cache: every read goes to the store
	h := handlers.NewLeaderboardHandler(reader, nil, nil)
	r.GET("/leaderboard", h.Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool                   `json:"success"`
		Leaders []run.LeaderboardEntry `json:"leaders"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body %q: %v", w.Body.String(), err)
	}

	if !resp.Success || len(resp.Leaders) != 2 || resp.Leaders[0].Name != "A" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if reader.calls != 1 {
		t.Fatalf("store queried %d times, want 1", reader.calls)
	}
}

func TestLeaderboard_StoreFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	reader := &fakeLeaderboard{err: errors.New("boom")}

	r := gin.New()
	h := handlers.NewLeaderboardHandler(reader, nil, nil)
	r.GET("/leaderboard", h.Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}
