// Package main is the entry point for the hireloop-api server.
// Note: user accounts and sessions are handled by the external identity
// provider; this service only verifies bearer tokens it issues.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/hireloop/hireloop-api/internal/auth"
	"github.com/hireloop/hireloop-api/internal/config"
	"github.com/hireloop/hireloop-api/internal/database"
	"github.com/hireloop/hireloop-api/internal/http/handlers"
	"github.com/hireloop/hireloop-api/internal/http/mw"
	"github.com/hireloop/hireloop-api/internal/logging"
	"github.com/hireloop/hireloop-api/internal/repository"
	"github.com/hireloop/hireloop-api/internal/scheduler"
	"github.com/hireloop/hireloop-api/internal/service"
	"github.com/hireloop/hireloop-api/internal/version"
)

func main() {
	// Initialize logger with TTY detection, source paths, and format control
	logger := logging.SetDefault()

	v := version.Get()
	logger.Info("starting hireloop-api",
		"version", v.Version,
		"commit", v.Commit,
		"built", v.Date,
		"go_version", v.GoVersion,
	)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.MigrateWithLogger(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := service.NewServices(ctx, cfg, repos, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	var verifier *auth.Verifier
	if cfg.AuthIssuerURL != "" {
		verifier = auth.NewVerifier(cfg.AuthIssuerURL, cfg.AuthJWKSURL)
		logger.Info("bearer authentication enabled", "issuer", cfg.AuthIssuerURL)
	} else {
		logger.Warn("AUTH_ISSUER_URL not set, bearer authentication will fail")
	}

	// Scheduler with the five daily tasks
	var sched *scheduler.Scheduler
	if cfg.SchedulerEnabled {
		sched = scheduler.New(logger)
		if err := registerTasks(sched, cfg, services); err != nil {
			logger.Error("failed to register scheduled tasks", "error", err)
			os.Exit(1)
		}
		sched.Start()
	} else {
		logger.Warn("scheduler disabled, background tasks will not run")
	}

	// Router and global middleware
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Use(middleware.RequestSize(cfg.MaxRequestBody))
	router.Use(httprate.LimitByIP(cfg.HTTPRatePerMinute, time.Minute))

	humaConfig := huma.DefaultConfig("Hireloop API", v.Short())
	humaConfig.Info.Description = "Job aggregation and matching backend: scrapes postings, matches them against your profile and CV, and tracks applications."
	humaConfig.Servers = []*huma.Server{
		{URL: cfg.BaseURL, Description: "API Server"},
	}
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		mw.SecurityScheme: {
			Type:        "http",
			Scheme:      "bearer",
			Description: "JWT issued by the identity provider, passed as `Bearer <token>`.",
		},
	}

	api := humachi.New(router, humaConfig)
	api.UseMiddleware(mw.HumaAuth(api, verifier))
	api.UseMiddleware(mw.HumaAIRateLimit(api, cfg.AIRatePerMinute))

	h := handlers.New(services, sched, cfg.MaxResultsCap)
	handlers.Register(api, h)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		<-sigChan

		logger.Info("shutting down server")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if sched != nil {
			if err := sched.Stop(shutdownCtx); err != nil {
				logger.Warn("scheduler shutdown error", "error", err)
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting server", "port", cfg.Port, "base_url", cfg.BaseURL)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// registerTasks wires the daily tasks to their schedules and deadlines.
func registerTasks(sched *scheduler.Scheduler, cfg *config.Config, services *service.Services) error {
	if err := sched.Register(scheduler.TaskScrapeJobs, cfg.ScrapeSchedule, cfg.ScrapeDeadline, func(ctx context.Context) error {
		return services.Scrape.RunScheduled(ctx, nil, cfg.MaxResultsPerSource)
	}); err != nil {
		return err
	}

	if err := sched.Register(scheduler.TaskGenerateRecommendations, cfg.RecommendSchedule, cfg.RecommendDeadline, func(ctx context.Context) error {
		_, err := services.Engine.RegenerateAll(ctx)
		return err
	}); err != nil {
		return err
	}

	if err := sched.Register(scheduler.TaskCleanupOldJobs, cfg.CleanupJobsSchedule, cfg.CleanupDeadline, func(ctx context.Context) error {
		_, err := services.Cleanup.CleanupOldJobs(ctx, cfg.RetentionDays)
		return err
	}); err != nil {
		return err
	}

	if err := sched.Register(scheduler.TaskCleanupExpiredRecs, cfg.CleanupRecsSchedule, cfg.CleanupDeadline, func(ctx context.Context) error {
		_, err := services.Cleanup.CleanupExpiredRecommendations(ctx)
		return err
	}); err != nil {
		return err
	}

	return sched.Register(scheduler.TaskCleanupExpiredSaved, cfg.CleanupSavedSchedule, cfg.CleanupDeadline, func(ctx context.Context) error {
		_, err := services.Cleanup.CleanupExpiredSavedJobs(ctx)
		return err
	})
}
