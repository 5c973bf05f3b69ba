package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"timecard/internal/domain/audit"
	"timecard/internal/domain/auth"
	"timecard/internal/domain/directory"
	"timecard/internal/domain/notifications"
	"timecard/internal/domain/payroll"
	"timecard/internal/domain/timesheet"
	"timecard/internal/platform/config"
	"timecard/internal/platform/db"
	"timecard/internal/platform/metrics"
	"timecard/internal/transport/http/api"
	audithandler "timecard/internal/transport/http/handlers/audit"
	authhandler "timecard/internal/transport/http/handlers/auth"
	notificationshandler "timecard/internal/transport/http/handlers/notifications"
	payrollhandler "timecard/internal/transport/http/handlers/payroll"
	timesheethandler "timecard/internal/transport/http/handlers/timesheet"
	"timecard/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// New connects, migrates and wires the full application. Callers own
// the returned pool via Close.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
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

	app := &App{Config: cfg, DB: pool}
	app.Router = app.buildRouter()
	return app, nil
}

func (a *App) buildRouter() http.Handler {
	cfg := a.Config
	pool := a.DB

	dirStore := directory.NewStore(pool)
	authStore := auth.NewStore(pool)
	perms := auth.Checker{}
	auditSvc := audit.New(pool)
	notifySvc := notifications.New(notifications.NewStore(pool))

	tsService := timesheet.NewService(timesheet.NewStore(pool), dirStore, cfg.WeeklyHourCap)
	payrollService := payroll.NewService(payroll.NewStore(pool), dirStore,
		cfg.Currency, cfg.StandardWeekHours, cfg.PayslipDir)

	collector := metrics.New()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.JWTSecret).RegisterRoutes(r)
		timesheethandler.NewHandler(tsService, perms, notifySvc, auditSvc, dirStore).RegisterRoutes(r)
		payrollhandler.NewHandler(payrollService, perms, notifySvc, auditSvc, dirStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc, perms).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, perms).RegisterRoutes(r)
	})

	return router
}

// Run blocks serving HTTP until the listener fails.
func (a *App) Run() error {
	slog.Info("timecard server listening", "addr", a.Config.Addr)
	return http.ListenAndServe(a.Config.Addr, a.Router)
}
