package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"milpay/internal/domain/audit"
	"milpay/internal/domain/payroll"
	"milpay/internal/domain/roster"
	"milpay/internal/platform/config"
	cryptoutil "milpay/internal/platform/crypto"
	"milpay/internal/platform/db"
	"milpay/internal/platform/jobs"
	"milpay/internal/platform/metrics"
	audithandler "milpay/internal/transport/http/handlers/audit"
	authhandler "milpay/internal/transport/http/handlers/auth"
	payrollhandler "milpay/internal/transport/http/handlers/payroll"
	rosterhandler "milpay/internal/transport/http/handlers/roster"
	"milpay/internal/transport/http/middleware"
)

// App holds the wired server. Router is exercised directly by journey
// tests without binding a listener.
type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
	Audit   *audit.Service
	Jobs    *jobs.Service

	crypto *cryptoutil.Service
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations failed: %w", err)
		}
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("invalid encryption key: %w", err)
	}

	collector := metrics.New()
	auditSvc := audit.New(pool)
	app := &App{
		Config:  cfg,
		DB:      pool,
		Metrics: collector,
		Audit:   auditSvc,
		Jobs:    jobs.New(pool, cfg, auditSvc),
		crypto:  cryptoSvc,
	}
	app.Router = app.buildRouter(collector)
	return app, nil
}

func (a *App) buildRouter(collector *metrics.Collector) http.Handler {
	cfg := a.Config
	pool := a.DB

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics(collector))
	}
	router.Use(middleware.Auth(cfg.JWTSecret))

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
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(collector.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(pool, cfg.JWTSecret)
		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		rosterStore := roster.NewStore(pool)
		rosterStore.Crypto = a.crypto
		rosterHandler := rosterhandler.NewHandler(rosterStore)
		rosterHandler.Audit = a.Audit
		rosterHandler.RegisterRoutes(r)

		payrollService := payroll.NewService(payroll.NewStore(pool), rosterStore, cfg.PayrollTotalsPolicy)
		payrollHandler := payrollhandler.NewHandler(payrollService)
		payrollHandler.Audit = a.Audit
		payrollHandler.RegisterRoutes(r)

		auditHandler := audithandler.NewHandler(a.Audit)
		auditHandler.RegisterRoutes(r)
	})

	return router
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run wires the application from the environment and serves until the
// process exits.
func Run() {
	cfg := config.Load()

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	app.Jobs.Start(ctx)

	log.Printf("milpay server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
