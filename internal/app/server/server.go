package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/evaluation"
	"appraisal/internal/platform/config"
	"appraisal/internal/platform/db"
	"appraisal/internal/platform/metrics"
	evaluationhandler "appraisal/internal/transport/http/handlers/evaluation"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/migrations"
)

const seedActor = "system"

// Backend is a store that can serve evaluations and accept catalog seeds.
type Backend interface {
	evaluation.StoreAPI
	evaluation.SeedStore
}

type App struct {
	Config  config.Config
	Store   Backend
	Service *evaluation.Service
	Metrics *metrics.Collector
	Router  http.Handler

	closers []func()
}

// New opens the configured store, seeds an empty catalog when a seed file
// is set and builds the HTTP router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scale := evaluation.DefaultRatingScale()
	if cfg.RatingScaleFile != "" {
		loaded, err := evaluation.LoadRatingScale(cfg.RatingScaleFile)
		if err != nil {
			return nil, err
		}
		scale = loaded
	}

	app := &App{Config: cfg, Metrics: metrics.New()}
	store, auditor, closeStore, err := OpenStore(ctx, cfg, cfg.RunMigrations)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, closeStore)
	app.Store = store

	svc := evaluation.NewService(store, scale, cfg.EmployeeClasses)
	svc.Audit = auditor
	svc.Metrics = app.Metrics
	app.Service = svc

	if cfg.CatalogSeedFile != "" {
		seed, err := evaluation.LoadCatalogSeed(cfg.CatalogSeedFile)
		if err != nil {
			app.Close()
			return nil, err
		}
		if err := evaluation.ApplySeed(ctx, svc, store, seedActor, seed); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	app.Router = NewRouter(cfg, svc, store, app.Metrics)
	return app, nil
}

// OpenStore connects the configured driver. The postgres schema is only
// migrated when migrate is set; the sqlite schema is always applied.
func OpenStore(ctx context.Context, cfg config.Config, migrate bool) (Backend, evaluation.Auditor, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("db connect failed: %w", err)
		}
		if migrate {
			if err := db.Migrate(ctx, pool, migrations.FS); err != nil {
				pool.Close()
				return nil, nil, nil, fmt.Errorf("migrations failed: %w", err)
			}
		}
		return evaluation.NewStore(pool), audit.New(pool), pool.Close, nil
	case config.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		store, err := evaluation.NewSQLiteStore(ctx, conn)
		if err != nil {
			_ = conn.Close()
			return nil, nil, nil, err
		}
		return store, audit.NewSQLite(conn), closeSQL(conn), nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}
}

func closeSQL(conn *sql.DB) func() {
	return func() {
		if err := conn.Close(); err != nil {
			slog.Warn("close sqlite failed", "err", err)
		}
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(cfg config.Config, svc evaluationhandler.Service, store pinger, collector *metrics.Collector) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
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
		if cfg.RateLimitPerMinute > 0 {
			trusted, err := cfg.TrustedProxyPrefixes()
			if err != nil {
				slog.Error("ignoring trusted proxies", "err", err)
				trusted = nil
			}
			r.Use(middleware.MutationRateLimit(cfg.RateLimitPerMinute, time.Minute, trusted))
		}
		evaluationHandler := evaluationhandler.NewHandler(svc, auth.StaticPermissions{})
		evaluationHandler.RegisterRoutes(r)
	})

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("appraisal server listening", "addr", a.Config.Addr, "store", a.Config.StoreDriver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	slog.Info("appraisal server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
