package router

import (
	"github.com/erp/bankfeed/internal/infrastructure/logger"
	"github.com/erp/bankfeed/internal/interfaces/http/handler"
	"github.com/erp/bankfeed/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// EngineConfig selects the optional parts of the HTTP surface
type EngineConfig struct {
	ServiceName    string
	TrustedProxies []string

	Tracing        bool
	TracerProvider trace.TracerProvider

	// WebhookMaxBody bounds webhook bodies; <= 0 disables the limit
	WebhookMaxBody int64
	// WebhookLimiter throttles webhook callers; nil disables throttling
	WebhookLimiter *middleware.RateLimiter
	// AdminMaxBody bounds admin API bodies; <= 0 disables the limit
	AdminMaxBody int64
	// AdminAuth guards the admin API; nil leaves the admin API unmounted
	AdminAuth gin.HandlerFunc
}

// Handlers are the endpoint implementations mounted by NewEngine
type Handlers struct {
	Webhook *handler.CassoWebhookHandler
	Admin   *handler.BankfeedAdminHandler
	System  *handler.SystemHandler
}

// NewEngine builds the gin engine: the middleware stack, POST /casso/webhook,
// GET /health and, when enabled, the /api/v1/bankfeed admin API.
func NewEngine(log *zap.Logger, cfg EngineConfig, h Handlers) *gin.Engine {
	engine := gin.New()
	if len(cfg.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName:    cfg.ServiceName,
		Enabled:        cfg.Tracing,
		TracerProvider: cfg.TracerProvider,
	}))
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	r := NewRouter(engine, WithAPIVersion("v1"))
	r.RegisterRoot(webhookRoutes(cfg, h.Webhook))
	r.RegisterRoot(systemRoutes(h.System))

	if cfg.AdminAuth != nil && h.Admin != nil {
		r.Register(adminRoutes(cfg, h.Admin))
	}

	r.Setup()
	for _, route := range r.Routes() {
		log.Debug("Route mounted",
			zap.String("group", route.Group),
			zap.String("method", route.Method),
			zap.String("path", route.Path),
		)
	}
	return engine
}

func webhookRoutes(cfg EngineConfig, h *handler.CassoWebhookHandler) *DomainGroup {
	g := NewDomainGroup("webhook", "/casso")
	if cfg.WebhookLimiter != nil {
		g.Use(middleware.WebhookRateLimit(cfg.WebhookLimiter))
	}
	if cfg.WebhookMaxBody > 0 {
		g.Use(middleware.WebhookBodyLimit(cfg.WebhookMaxBody))
	}
	g.POST("/webhook", h.Receive)
	return g
}

func systemRoutes(h *handler.SystemHandler) *DomainGroup {
	g := NewDomainGroup("system", "")
	g.GET("/health", h.Health)
	g.GET("/system/info", h.GetSystemInfo)
	return g
}

func adminRoutes(cfg EngineConfig, h *handler.BankfeedAdminHandler) *DomainGroup {
	g := NewDomainGroup("bankfeed", "/bankfeed")
	g.Use(cfg.AdminAuth)
	if cfg.AdminMaxBody > 0 {
		g.Use(middleware.BodyLimit(cfg.AdminMaxBody))
	}

	g.POST("/journals", h.CreateJournal).
		GET("/journals", h.ListJournals)

	mappings := g.Group("mappings", "/mappings")
	mappings.POST("", h.CreateMapping).
		GET("", h.ListMappings).
		POST("/:id/activate", h.ActivateMapping).
		POST("/:id/deactivate", h.DeactivateMapping)

	g.GET("/statement-lines/:external_id", h.GetStatementLine)
	g.PUT("/settings/:key", h.SetParameter)
	return g
}
