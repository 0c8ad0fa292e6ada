package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/crm/backend/internal/application/identity"
	importapp "github.com/crm/backend/internal/application/import"
	"github.com/crm/backend/internal/bootstrap"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/infrastructure/config"
	dataimport "github.com/crm/backend/internal/infrastructure/import"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/storage"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("Server stopped with error", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting CRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	tracer, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		return err
	}
	defer shutdown(log, "tracer provider", tracer.Shutdown)

	db, err := persistence.NewDatabase(ctx, &cfg.Database, persistence.WithLogger(log, logger.MapGormLogLevel(cfg.Log.Level)))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if db.Driver() == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}
	log.Info("Database connected", zap.String("driver", db.Driver()))

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:          cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem:         dbSystem(db.Driver()),
		IncludeVariables: !cfg.IsProduction(),
	}, log); err != nil {
		return err
	}

	var metrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		metrics = telemetry.NewMetrics()
		sqlDB, err := db.DB.DB()
		if err != nil {
			return err
		}
		if _, err := telemetry.RegisterDBMetrics(metrics, db.DB, sqlDB, cfg.Database.DBName, cfg.Database.SlowQueryThreshold); err != nil {
			return err
		}
	}

	store, redisClient := cache.NewStore(ctx, cfg.Redis, log)
	defer func() { _ = store.Close() }()
	var revoker auth.Revoker = auth.NewMemoryRevoker()
	if redisClient != nil {
		revoker = auth.NewRedisRevoker(redisClient)
	}

	objects, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		return err
	}

	repos := bootstrap.NewRepositories(db.DB)
	services := bootstrap.NewServices(repos, bootstrap.Options{
		Logger:       log,
		Cache:        store,
		Storage:      objects,
		Sessions:     dataimport.NewMemorySessionStore(cfg.Import.SessionTTL, cfg.Import.CleanupInterval),
		Metrics:      metrics,
		DashboardTTL: cfg.Dashboard.CacheTTL,
		ReceiptTTL:   cfg.Storage.PresignExpiration,
		Import: importapp.Options{
			MaxFileSize: cfg.Import.MaxFileSize,
			MaxRows:     cfg.Import.MaxRows,
			MaxErrors:   cfg.Import.MaxErrors,
		},
	})
	defer services.Close()
	if err := services.Bus.Start(ctx); err != nil {
		return err
	}
	defer shutdown(log, "event bus", services.Bus.Stop)

	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(repos.Users, jwtService, revoker, log)

	checks := healthChecks(db, redisClient)
	engine, limiter := newEngine(cfg, log, engineDeps{
		services:   services,
		auth:       authService,
		jwt:        jwtService,
		revoker:    revoker,
		metrics:    metrics,
		checks:     checks,
		appVersion: version,
	})
	if limiter != nil {
		defer limiter.Stop()
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}

func shutdown(log *zap.Logger, what string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Error("Error stopping "+what, zap.Error(err))
	}
}

func dbSystem(driver string) string {
	if driver == config.DriverPostgres {
		return "postgresql"
	}
	return driver
}
