package main

import (
	"context"
	"net/http"

	identityapp "github.com/crm/backend/internal/application/identity"
	"github.com/crm/backend/internal/bootstrap"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/middleware"
	"github.com/crm/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// uploadSlack covers the multipart envelope around an import file
const uploadSlack = 1 << 20

type engineDeps struct {
	services   *bootstrap.Services
	auth       *identityapp.AuthService
	jwt        *auth.JWTService
	revoker    auth.Revoker
	metrics    *telemetry.Metrics
	checks     map[string]handler.HealthCheck
	appVersion string
}

// newEngine assembles the gin engine. The returned limiter is nil when rate
// limiting is disabled and must be stopped by the caller otherwise.
func newEngine(cfg *config.Config, log *zap.Logger, deps engineDeps) (*gin.Engine, *middleware.RateLimiter) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
		_ = engine.SetTrustedProxies(nil)
	}

	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.SpanAttributes())
	if deps.metrics != nil {
		engine.Use(middleware.HTTPMetrics(deps.metrics, metricsPath, "/health"))
	}
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(cors))

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	var authn gin.HandlerFunc
	if cfg.JWT.Enabled {
		jwtCfg := middleware.DefaultJWTConfig(deps.jwt)
		jwtCfg.Revoker = deps.revoker
		jwtCfg.Logger = log
		authn = middleware.JWTAuthMiddlewareWithConfig(jwtCfg)
	} else {
		log.Warn("JWT authentication is disabled, every request runs in the development tenant")
	}

	s := deps.services
	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(deps.auth),
		Companies:   handler.NewCompanyHandler(s.Companies),
		Contacts:    handler.NewContactHandler(s.Contacts),
		Competitors: handler.NewCompetitorHandler(s.Competitors),
		Leads:       handler.NewLeadHandler(s.Leads),
		Deals:       handler.NewOpportunityHandler(s.Deals),
		Activities:  handler.NewActivityHandler(s.Activities),
		Expenses:    handler.NewExpenseHandler(s.Expenses),
		Settings:    handler.NewSettingsHandler(s.Settings),
		Dashboard:   handler.NewDashboardHandler(s.Dashboard),
		Import:      handler.NewImportHandler(s.Import),
	}

	r := router.NewRouter(engine,
		router.WithAPIVersion("v1"),
		router.WithMiddleware(authn, middleware.Tenant(middleware.DevelopmentTenantID)),
	)
	for _, res := range router.Resources(handlers, router.Limits{
		MaxBodySize:   cfg.HTTP.MaxBodySize,
		MaxUploadSize: cfg.Import.MaxFileSize + uploadSlack,
	}) {
		r.Register(res)
	}
	r.Setup()

	system := handler.NewSystemHandler(cfg.App.Name, deps.appVersion, deps.checks)
	var metricsHandler http.Handler
	if deps.metrics != nil {
		metricsHandler = deps.metrics.Handler()
	}
	router.RegisterSystem(engine, system, metricsPath, metricsHandler)

	return engine, limiter
}

func healthChecks(db *persistence.Database, client *redis.Client) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"database": db.Ping,
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}
