package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"leavedesk/internal/domain/core"
	"leavedesk/internal/domain/leave"
	"leavedesk/internal/domain/notifications"
	"leavedesk/internal/platform/config"
	"leavedesk/internal/platform/db"
	"leavedesk/internal/platform/email"
	"leavedesk/internal/platform/metrics"
	"leavedesk/internal/transport/http/api"
	adminleavehandler "leavedesk/internal/transport/http/handlers/adminleave"
	authhandler "leavedesk/internal/transport/http/handlers/auth"
	corehandler "leavedesk/internal/transport/http/handlers/core"
	leavehandler "leavedesk/internal/transport/http/handlers/leave"
	reportshandler "leavedesk/internal/transport/http/handlers/reports"
	"leavedesk/internal/transport/http/middleware"
)

// App wires the stores, services and router together. Tests construct
// one against a scratch database and drive the router directly.
type App struct {
	Config  config.Config
	Pool    *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	notifier := notifications.New(email.New(cfg), cfg.EmailFrom, cfg.HRInbox)

	coreService := core.NewService(core.NewStore(pool))
	leaveService := leave.NewService(leave.NewStore(pool), notifier)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	app := &App{Config: cfg, Pool: pool, Metrics: collector}
	app.Router = app.buildRouter(coreService, leaveService)
	return app, nil
}

func (a *App) buildRouter(coreService *core.Service, leaveService *leave.Service) http.Handler {
	cfg := a.Config

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Metrics(a.Metrics))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if a.Metrics != nil {
		router.With(middleware.RequireAdmin).Get("/metricz", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(coreService, cfg.JWTSecret)
		r.With(middleware.RateLimit(10, time.Minute)).Post("/auth/login", authHandler.HandleLogin)
		r.With(middleware.RequireAuth).Get("/auth/check", authHandler.HandleCheck)
		r.With(middleware.RequireAuth).Get("/profile", authHandler.HandleProfile)
		r.With(middleware.RequireAuth).Put("/profile", authHandler.HandleUpdateProfile)
		r.With(middleware.RequireAuth).Post("/profile/password", authHandler.HandleUpdatePassword)

		corehandler.NewHandler(coreService).RegisterRoutes(r)
		leavehandler.NewHandler(leaveService).RegisterRoutes(r)
		adminleavehandler.NewHandler(leaveService).RegisterRoutes(r)
		reportshandler.NewHandler(leaveService, coreService).RegisterRoutes(r)
	})

	return router
}

func (a *App) Run() error {
	slog.Info("server listening", "addr", a.Config.Addr)
	return http.ListenAndServe(a.Config.Addr, a.Router)
}

func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
	}
}
