package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	bankfeedapp "github.com/erp/bankfeed/internal/application/bankfeed"
	"github.com/erp/bankfeed/internal/domain/bankfeed"
	"github.com/erp/bankfeed/internal/infrastructure/casso"
	"github.com/erp/bankfeed/internal/infrastructure/logger"
	"github.com/erp/bankfeed/internal/infrastructure/storage"
	"github.com/erp/bankfeed/internal/infrastructure/telemetry"
	"github.com/erp/bankfeed/internal/interfaces/http/dto"
	"github.com/erp/bankfeed/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BatchProcessor records the transactions of one delivery
type BatchProcessor interface {
	ProcessBatch(ctx context.Context, items []map[string]any, settings bankfeed.Settings) []bankfeedapp.ItemResult
}

// CassoWebhookHandler receives Casso webhook V2 deliveries
type CassoWebhookHandler struct {
	settings  bankfeed.SettingsProvider
	processor BatchProcessor
	archive   storage.PayloadArchive
	metrics   *telemetry.WebhookMetrics
	maxBody   int64
	now       func() time.Time
}

// NewCassoWebhookHandler creates a CassoWebhookHandler. A nil archive
// disables payload archiving; maxBody <= 0 leaves the body unbounded here.
func NewCassoWebhookHandler(
	settings bankfeed.SettingsProvider,
	processor BatchProcessor,
	archive storage.PayloadArchive,
	metrics *telemetry.WebhookMetrics,
	maxBody int64,
) *CassoWebhookHandler {
	if archive == nil {
		archive = storage.NoopArchive{}
	}
	return &CassoWebhookHandler{
		settings:  settings,
		processor: processor,
		archive:   archive,
		metrics:   metrics,
		maxBody:   maxBody,
		now:       time.Now,
	}
}

// Receive godoc
// @ID           receiveCassoWebhook
// @Summary      Receive a Casso webhook delivery
// @Description  Verifies the X-Casso-Signature HMAC and records one bank statement line per transaction.
// @Description  Request-level failures answer {"error":1,"message":...}; per-transaction failures are reported in results.
// @Tags         webhook
// @Accept       json
// @Produce      json
// @Param        X-Casso-Signature header string true "t=<unix>,v1=<hex> or bare hex HMAC-SHA512"
// @Param        payload           body   object true "Casso webhook V2 payload"
// @Success      200 {object} dto.WebhookResponse
// @Failure      400 {object} dto.WebhookError
// @Failure      401 {object} dto.WebhookError
// @Failure      403 {object} dto.WebhookError
// @Failure      413 {object} dto.WebhookError
// @Failure      422 {object} dto.WebhookError
// @Failure      500 {object} dto.WebhookError
// @Router       /casso/webhook [post]
func (h *CassoWebhookHandler) Receive(c *gin.Context) {
	start := h.now()
	ctx := c.Request.Context()
	outcome := telemetry.OutcomeError
	defer func() {
		h.metrics.RecordDelivery(ctx, outcome, h.now().Sub(start))
	}()

	log := logger.L(ctx)
	ip := middleware.CallerIP(c)

	settings, err := h.settings.Settings(ctx)
	if err != nil {
		log.Error("Failed to load webhook settings", zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.NewWebhookError("Internal Server Error"))
		return
	}

	if !settings.IPAllowed(ip) {
		outcome = telemetry.OutcomeForbidden
		log.Warn("Webhook call from address outside the allow-list", zap.String("ip", ip))
		resp := dto.NewWebhookError("Forbidden IP")
		if settings.Debug {
			resp.IP = ip
		}
		c.JSON(http.StatusForbidden, resp)
		return
	}

	body, err := h.readBody(c)
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			outcome = telemetry.OutcomeTooLarge
			c.JSON(http.StatusRequestEntityTooLarge, dto.NewWebhookError("Payload too large"))
			return
		}
		outcome = telemetry.OutcomeBadRequest
		c.JSON(http.StatusBadRequest, dto.NewWebhookError("Invalid request body"))
		return
	}

	payload, err := casso.DecodeBody(body)
	if err != nil {
		outcome = telemetry.OutcomeBadRequest
		c.JSON(http.StatusBadRequest, dto.NewWebhookError("Invalid JSON: "+err.Error()))
		return
	}

	verification := casso.NewVerifier(settings.HMACSecret).Verify(payload, c.GetHeader(casso.SignatureHeader))
	if !verification.OK {
		outcome = telemetry.OutcomeUnauthorized
		fields := []zap.Field{
			zap.String("ip", ip),
			zap.String("reason", verification.Reason),
		}
		if settings.Debug {
			fields = append(fields, verificationFields(verification)...)
		}
		log.Warn("Webhook signature rejected", fields...)
		resp := dto.NewWebhookError("Unauthorized")
		if settings.Debug {
			resp.Reason = verification.Reason
		}
		c.JSON(http.StatusUnauthorized, resp)
		return
	}

	if settings.Debug {
		log.Debug("Webhook signature verified", verificationFields(verification)...)
	}

	items, err := casso.Transactions(payload)
	if err != nil {
		outcome = telemetry.OutcomeUnsupported
		c.JSON(http.StatusUnprocessableEntity, dto.NewWebhookError("Unsupported payload"))
		return
	}

	h.archiveBody(ctx, middleware.GetRequestID(c), start, body)

	results := h.processor.ProcessBatch(ctx, items, settings)
	outcome = telemetry.OutcomeOK

	resp := dto.WebhookResponse{Results: results}
	if settings.StrictMode {
		ok := true
		resp.Success = &ok
	}
	c.JSON(http.StatusOK, resp)
}

func verificationFields(v casso.Verification) []zap.Field {
	return []zap.Field{
		zap.String("scheme", string(v.Scheme)),
		zap.Bool("has_timestamp", v.HasTimestamp),
		zap.Int("base_len", v.BaseLen),
	}
}

func (h *CassoWebhookHandler) readBody(c *gin.Context) ([]byte, error) {
	reader := c.Request.Body
	if h.maxBody > 0 {
		reader = http.MaxBytesReader(c.Writer, reader, h.maxBody)
	}
	return io.ReadAll(reader)
}

func (h *CassoWebhookHandler) archiveBody(ctx context.Context, requestID string, receivedAt time.Time, body []byte) {
	key, err := h.archive.Archive(ctx, requestID, receivedAt, body)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.L(ctx).Warn("Failed to archive webhook payload", zap.Error(err))
		return
	}
	if key != "" {
		logger.L(ctx).Debug("Webhook payload archived", zap.String("key", key))
	}
}
