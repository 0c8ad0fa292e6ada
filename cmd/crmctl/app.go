package main

import (
	"context"
	"fmt"

	importapp "github.com/crm/backend/internal/application/import"
	"github.com/crm/backend/internal/bootstrap"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/storage"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// app is the service graph a command runs against
type app struct {
	log      *zap.Logger
	tenant   uuid.UUID
	services *bootstrap.Services
	closers  []func() error
}

func (a *app) Close() {
	a.services.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("Shutdown step failed", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

func parseTenant(raw string) (uuid.UUID, error) {
	if raw == "" {
		return middleware.DevelopmentTenantID, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid --tenant %q: %w", raw, err)
	}
	return id, nil
}

func openApp(ctx context.Context, opts *rootOptions) (*app, error) {
	tenant, err := parseTenant(opts.tenant)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(logger.Config{Level: opts.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return nil, err
	}

	db, err := persistence.NewDatabase(ctx, &cfg.Database, persistence.WithLogger(log, logger.MapGormLogLevel(opts.logLevel)))
	if err != nil {
		return nil, err
	}
	if db.Driver() == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	// Writes go through the shared cache so a running server drops stale dashboards
	store, _ := cache.NewStore(ctx, cfg.Redis, log)
	objects, err := storage.New(ctx, &cfg.Storage, log)
	if err != nil {
		_ = store.Close()
		_ = db.Close()
		return nil, err
	}

	services := bootstrap.NewServices(bootstrap.NewRepositories(db.DB), bootstrap.Options{
		Logger:       log,
		Cache:        store,
		Storage:      objects,
		DashboardTTL: cfg.Dashboard.CacheTTL,
		ReceiptTTL:   cfg.Storage.PresignExpiration,
		Import: importapp.Options{
			MaxFileSize: cfg.Import.MaxFileSize,
			MaxRows:     cfg.Import.MaxRows,
			MaxErrors:   cfg.Import.MaxErrors,
		},
	})
	return &app{
		log:      log,
		tenant:   tenant,
		services: services,
		closers:  []func() error{db.Close, store.Close},
	}, nil
}
