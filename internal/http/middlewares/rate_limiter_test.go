package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runhub-app/runhub/internal/auth"
	"github.com/runhub-app/runhub/internal/http/middlewares"
)

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := middlewares.NewRateLimiter(2, time.Minute)

	r := gin.New()
	r.POST("/auth", rl.Middleware(middlewares.KeyByIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		return w
	}

	for i := 0; i < 2; i++ {
		if w := hit(); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, w.Code)
		}
	}

	w := hit()

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", w.Code)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("429 response is missing Retry-After")
	}
}

// Behind the token middleware the limiter buckets by user id, so one client
// exhausting its window must not throttle another.
func TestRateLimiter_KeysByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rl := middlewares.NewRateLimiter(1, time.Minute)

	r := gin.New()

	group := r.Group("/runs", middlewares.RequireToken(), rl.Middleware(middlewares.KeyByUserOrIP))
	group.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/runs", nil)
		req.Header.Set("X-Auth-Token", token)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		return w
	}

	first, err := auth.IssueToken(1)

	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	second, err := auth.IssueToken(2)

	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}

	if w := hit(first); w.Code != http.StatusOK {
		t.Fatalf("first user status = %d, want 200", w.Code)
	}

	if w := hit(first); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first user repeat status = %d, want 429", w.Code)
	}

	if w := hit(second); w.Code != http.StatusOK {
		t.Fatalf("second user status = %d, want 200", w.Code)
	}
}
