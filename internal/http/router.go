package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/runhub-app/runhub/internal/cache"
	"github.com/runhub-app/runhub/internal/config"
	"github.com/runhub-app/runhub/internal/http/handlers"
	"github.com/runhub-app/runhub/internal/http/middlewares"
	"github.com/runhub-app/runhub/internal/observability"
	"github.com/runhub-app/runhub/internal/repo/postgres"
)

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, rdb *redis.Client, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("runhub-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowAll, nil))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))
	r.Use(prom.GinHandleMiddleware())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	runsRepo := postgres.NewRunsRepo(pool, prom)
	lbCache := cache.NewLeaderboard(rdb, 30*time.Second)

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, log)
	runsHandler := handlers.NewRunsHandler(runsRepo, runsRepo, usersRepo, lbCache, log)
	lbHandler := handlers.NewLeaderboardHandler(runsRepo, lbCache, log)

	authLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)
	apiLimiter := middlewares.NewRateLimiter(cfg.APIRateLimit, cfg.APIRateWindow)

	r.POST("/auth", authLimiter.Middleware(middlewares.KeyByIP), authHandler.Handle)

	// the token middleware runs first so the limiter can key on the user id
	runs := r.Group("/runs", middlewares.RequireToken(), apiLimiter.Middleware(middlewares.KeyByUserOrIP))
	runs.POST("", runsHandler.SaveRun)
	runs.GET("", runsHandler.ListRuns)

	r.GET("/leaderboard", lbHandler.Get)

	return r
}
