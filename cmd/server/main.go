package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	bankfeedapp "github.com/erp/bankfeed/internal/application/bankfeed"
	"github.com/erp/bankfeed/internal/domain/bankfeed"
	"github.com/erp/bankfeed/internal/infrastructure/auth"
	"github.com/erp/bankfeed/internal/infrastructure/cache"
	"github.com/erp/bankfeed/internal/infrastructure/config"
	"github.com/erp/bankfeed/internal/infrastructure/logger"
	"github.com/erp/bankfeed/internal/infrastructure/persistence"
	"github.com/erp/bankfeed/internal/infrastructure/storage"
	"github.com/erp/bankfeed/internal/infrastructure/telemetry"
	"github.com/erp/bankfeed/internal/interfaces/http/handler"
	"github.com/erp/bankfeed/internal/interfaces/http/middleware"
	"github.com/erp/bankfeed/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../docs --parseInternal

var version = "dev"

//	@title						Bank Feed API
//	@version					1.0
//	@description				Casso webhook receiver recording bank statement lines, with an admin API for journals, account mappings and webhook settings.
//	@host						localhost:8080
//	@BasePath					/
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Admin bearer token. Format: "Bearer {token}"
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	// Telemetry first so that everything below is instrumented
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize log export", zap.Error(err))
	}
	log = loggerProvider.Bridge(log, cfg.Telemetry.ServiceName, zapcore.InfoLevel)

	log.Info("Starting bank feed service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(); err != nil {
		log.Fatal("Failed to migrate sqlite schema", zap.Error(err))
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing {
		if err := telemetry.RegisterDBTracing(db.DB, cfg.Database.Driver, nil); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	journals := persistence.NewGormJournalRepository(db.DB)
	mappings := persistence.NewGormBankAccountMappingRepository(db.DB)
	lines := persistence.NewGormStatementLineRepository(db.DB)
	params := persistence.NewGormConfigParameterRepository(db.DB)

	settings := settingsProvider(cfg.Webhook, params, log)

	guard, guardCloser, err := cache.NewDeliveryGuard(cfg.Webhook.Guard, cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	)
	if err != nil {
		log.Fatal("Failed to initialize delivery guard", zap.Error(err))
	}

	archive := payloadArchive(ctx, cfg, log)

	metrics, err := telemetry.NewWebhookMetrics(meterProvider.Meter(telemetry.TracerName))
	if err != nil {
		log.Fatal("Failed to register webhook metrics", zap.Error(err))
	}

	resolver := bankfeed.NewAccountResolver(mappings, journals, parseOptionalUUID(cfg.Webhook.CompanyID))
	statementLines := bankfeedapp.NewStatementLineService(lines, resolver, guard, metrics, bankfeedapp.StatementLineOptions{
		Location:  cfg.Webhook.Location(),
		GuardTTL:  cfg.Webhook.GuardTTL,
		GuardWait: cfg.Webhook.GuardWait,
	})

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engineCfg := router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		Tracing:        cfg.Telemetry.Enabled,
		TracerProvider: tracerProvider.Provider(),
		WebhookMaxBody: cfg.Webhook.MaxBodySize,
		AdminMaxBody:   cfg.HTTP.MaxBodySize,
	}
	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimit, cfg.HTTP.RateWindow)
		engineCfg.WebhookLimiter = limiter
		log.Info("Webhook rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimit),
			zap.Duration("window", cfg.HTTP.RateWindow),
		)
	}
	if cfg.Admin.Enabled {
		engineCfg.AdminAuth = middleware.AdminAuth(auth.NewTokenService(cfg.Admin.JWTSecret, cfg.Admin.Issuer), log)
	}

	engine := router.NewEngine(log, engineCfg, router.Handlers{
		Webhook: handler.NewCassoWebhookHandler(settings, statementLines, archive, metrics, cfg.Webhook.MaxBodySize),
		Admin:   handler.NewBankfeedAdminHandler(bankfeedapp.NewAdminService(journals, mappings, lines, params)),
		System:  handler.NewSystemHandler(cfg.App.Name, version, db),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	closers := map[string]io.Closer{
		"delivery guard": guardCloser,
		"database":       db,
	}
	if limiter != nil {
		closers["rate limiter"] = limiter
	}
	for name, c := range closers {
		if err := c.Close(); err != nil {
			log.Error("Error closing "+name, zap.Error(err))
		}
	}

	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down log exporter", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// settingsProvider returns the configured webhook settings, overlaid by the
// config_parameters table when runtime settings are enabled
func settingsProvider(cfg config.WebhookConfig, params bankfeed.ConfigParameterRepository, log *zap.Logger) bankfeed.SettingsProvider {
	defaults := bankfeed.Settings{
		HMACSecret:       cfg.HMACSecret,
		AllowedIPs:       cfg.AllowedIPs,
		DefaultJournalID: parseOptionalUUID(cfg.DefaultJournalID),
		Debug:            cfg.Debug,
		StrictMode:       cfg.StrictMode,
	}
	if !cfg.RuntimeSettings {
		return bankfeed.StaticSettings(defaults)
	}
	return persistence.NewDBSettingsProvider(params, defaults, log)
}

func payloadArchive(ctx context.Context, cfg *config.Config, log *zap.Logger) storage.PayloadArchive {
	if !cfg.Storage.Enabled {
		return storage.NoopArchive{}
	}
	archive, err := storage.NewS3PayloadArchive(ctx, &cfg.Storage, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to initialize payload archive", zap.Error(err))
	}
	if err := archive.EnsureBucket(ctx); err != nil {
		log.Warn("Payload archive bucket unavailable", zap.String("bucket", archive.Bucket()), zap.Error(err))
	}
	return archive
}

func parseOptionalUUID(raw string) *uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
