package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/healthsync/internal/application"
	appai "github.com/bryanwahyu/healthsync/internal/application/ai"
	appanalyses "github.com/bryanwahyu/healthsync/internal/application/analyses"
	appmeds "github.com/bryanwahyu/healthsync/internal/application/medications"
	"github.com/bryanwahyu/healthsync/internal/config"
	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
	"github.com/bryanwahyu/healthsync/internal/domain/failures"
	"github.com/bryanwahyu/healthsync/internal/domain/medication"
	mysqlp "github.com/bryanwahyu/healthsync/internal/infra/db/mysql"
	"github.com/bryanwahyu/healthsync/internal/infra/db/postgres"
	"github.com/bryanwahyu/healthsync/internal/infra/events"
	"github.com/bryanwahyu/healthsync/internal/infra/httpserver"
	"github.com/bryanwahyu/healthsync/internal/infra/pdf"
	minioStore "github.com/bryanwahyu/healthsync/internal/infra/storage"
	"github.com/bryanwahyu/healthsync/internal/middleware"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("config load: %w", err)
			}
			return runServer(cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("config load: %w", err)
			}
			logger := newLogger(cfg.Log.Level, cfg.Log.Pretty)
			ctx := cmd.Context()
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migrate(ctx, cfg, db); err != nil {
				return err
			}
			logger.Info().Str("driver", cfg.Database.Driver).Msg("migrations applied")
			return nil
		},
	}
}

type repositories struct {
	analyses    analysis.Repository
	medications medication.Repository
	failures    failures.Repository
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.Database.Driver == "postgres" {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		return db, nil
	}
	db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, fmt.Errorf("mysql connect: %w", err)
	}
	return db, nil
}

func migrate(ctx context.Context, cfg *config.Config, db *sql.DB) error {
	if cfg.Database.Driver == "postgres" {
		return postgres.Migrate(ctx, db)
	}
	return mysqlp.Migrate(ctx, db)
}

func newRepositories(cfg *config.Config, db *sql.DB) repositories {
	if cfg.Database.Driver == "postgres" {
		return repositories{
			analyses:    postgres.NewAnalysisRepository(db),
			medications: postgres.NewMedicationRepository(db),
			failures:    postgres.NewFailureRepository(db),
		}
	}
	return repositories{
		analyses:    mysqlp.NewAnalysisRepository(db),
		medications: mysqlp.NewMedicationRepository(db),
		failures:    mysqlp.NewFailureRepository(db),
	}
}

func apiKeys(cfg *config.Config) []middleware.APIKey {
	keys := make([]middleware.APIKey, 0, len(cfg.Auth.Keys))
	for _, k := range cfg.Auth.Keys {
		keys = append(keys, middleware.APIKey{Key: k.Key, Subject: k.Subject, Role: k.Role})
	}
	return keys
}

func runServer(cfg *config.Config) error {
	logger := newLogger(cfg.Log.Level, cfg.Log.Pretty)
	ctx := context.Background()

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info().Str("driver", cfg.Database.Driver).Msg("connected to database")

	if cfg.Database.Migrate {
		if err := migrate(ctx, cfg, db); err != nil {
			return err
		}
	}
	repos := newRepositories(cfg, db)

	health := map[string]middleware.HealthChecker{
		"database": &middleware.DatabaseHealthChecker{DB: db},
	}

	var sources analysis.SourceStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init: %w", err)
		}
		sources = store
		health["storage"] = middleware.CheckFunc(store.Ping)
	}

	client, err := newAIClient(ctx, cfg.AI.Provider, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.BaseURL)
	if err != nil {
		return fmt.Errorf("ai client: %w", err)
	}
	if client == nil {
		logger.Warn().Str("provider", cfg.AI.Provider).Msg("no AI key configured, serving demo analyses")
	}

	metrics := middleware.NewMetrics()
	bus := events.NewBus(logger)
	bus.Subscribe(metrics.Observe)
	bus.Subscribe(logEvent(logger), analysis.EventAnalysisFailed, analysis.EventAnalysisReviewed)

	clock := application.SystemClock{}
	analyses := &appanalyses.Service{
		Repo:     repos.analyses,
		Analyzer: appai.NewService(client, clock, logger.With().Str("component", "ai").Logger()),
		Exporter: pdf.Exporter{},
		Sources:  sources,
		Failures: repos.failures,
		Events:   bus,
		Clock:    clock,
		Log:      logger.With().Str("component", "analyses").Logger(),
	}
	medications := &appmeds.Service{
		Repo:   repos.medications,
		Events: bus,
		Clock:  clock,
		Log:    logger.With().Str("component", "medications").Logger(),
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Capacity > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
		sweepCtx, stopSweep := context.WithCancel(ctx)
		defer stopSweep()
		go limiter.Run(sweepCtx, 5*time.Minute)
	}

	handler := httpserver.NewRouter(analyses, medications, httpserver.Options{
		APIKeys:        apiKeys(cfg),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Limiter:        limiter,
		Health:         health,
		Metrics:        metrics,
		Log:            logger,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	logger.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx2)
}

func logEvent(logger zerolog.Logger) events.Handler {
	return func(_ context.Context, e analysis.Event) {
		logger.Info().
			Str("event", e.Kind).
			Str("patient_id", e.PatientID).
			Str("record_id", string(e.RecordID)).
			Msg("domain event")
	}
}
