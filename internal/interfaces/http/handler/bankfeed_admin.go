package handler

import (
	"strings"

	bankfeedapp "github.com/erp/bankfeed/internal/application/bankfeed"
	"github.com/erp/bankfeed/internal/infrastructure/logger"
	"github.com/erp/bankfeed/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BankfeedAdminHandler serves the journal, mapping and settings admin API
type BankfeedAdminHandler struct {
	BaseHandler
	svc *bankfeedapp.AdminService
}

// NewBankfeedAdminHandler creates a new BankfeedAdminHandler
func NewBankfeedAdminHandler(svc *bankfeedapp.AdminService) *BankfeedAdminHandler {
	return &BankfeedAdminHandler{svc: svc}
}

// CreateJournal godoc
// @ID           createBankfeedJournal
// @Summary      Create a journal
// @Description  Creates a bank, cash, sale, purchase or general journal for a company
// @Tags         bankfeed
// @Accept       json
// @Produce      json
// @Param        request body bankfeedapp.CreateJournalRequest true "Journal"
// @Success      201 {object} dto.Response{data=bankfeedapp.JournalResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Security     BearerAuth
// @Router       /api/v1/bankfeed/journals [post]
func (h *BankfeedAdminHandler) CreateJournal(c *gin.Context) {
	var req bankfeedapp.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	journal, err := h.svc.CreateJournal(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, journal)
}

// ListJournals godoc
// @ID           listBankfeedJournals
// @Summary      List journals
// @Description  Lists journals, optionally restricted to one company
// @Tags         bankfeed
// @Produce      json
// @Param        company_id query string false "Company ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]bankfeedapp.JournalResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /api/v1/bankfeed/journals [get]
func (h *BankfeedAdminHandler) ListJournals(c *gin.Context) {
	companyID, ok := h.optionalUUID(c, "company_id")
	if !ok {
		return
	}

	journals, err := h.svc.ListJournals(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, journals)
}

// CreateMapping godoc
// @ID           createBankfeedMapping
// @Summary      Map a bank account to a journal
// @Description  Routes deliveries for an external account number to a bank journal
// @Tags         bankfeed
// @Accept       json
// @Produce      json
// @Param        request body bankfeedapp.CreateMappingRequest true "Mapping"
// @Success      201 {object} dto.Response{data=bankfeedapp.MappingResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /api/v1/bankfeed/mappings [post]
func (h *BankfeedAdminHandler) CreateMapping(c *gin.Context) {
	var req bankfeedapp.CreateMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	mapping, err := h.svc.CreateMapping(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.audit(c).Info("Bank account mapping created",
		zap.String("mapping_id", mapping.ID.String()),
		zap.String("identifier", mapping.ExternalAccountIdentifier),
		zap.String("journal_id", mapping.JournalID.String()),
	)
	h.Created(c, mapping)
}

// ListMappings godoc
// @ID           listBankfeedMappings
// @Summary      List bank account mappings
// @Tags         bankfeed
// @Produce      json
// @Param        identifier  query string false "External account identifier"
// @Param        company_id  query string false "Company ID" format(uuid)
// @Param        active_only query bool   false "Only active mappings"
// @Success      200 {object} dto.Response{data=[]bankfeedapp.MappingResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /api/v1/bankfeed/mappings [get]
func (h *BankfeedAdminHandler) ListMappings(c *gin.Context) {
	var filter bankfeedapp.MappingListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	companyID, ok := h.optionalUUID(c, "company_id")
	if !ok {
		return
	}
	filter.CompanyID = companyID

	mappings, err := h.svc.ListMappings(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, mappings)
}

// ActivateMapping godoc
// @ID           activateBankfeedMapping
// @Summary      Activate a mapping
// @Tags         bankfeed
// @Produce      json
// @Param        id path string true "Mapping ID" format(uuid)
// @Success      200 {object} dto.Response{data=bankfeedapp.MappingResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /api/v1/bankfeed/mappings/{id}/activate [post]
func (h *BankfeedAdminHandler) ActivateMapping(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	mapping, err := h.svc.ActivateMapping(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.audit(c).Info("Bank account mapping activated", zap.String("mapping_id", id.String()))
	h.Success(c, mapping)
}

// DeactivateMapping godoc
// @ID           deactivateBankfeedMapping
// @Summary      Deactivate a mapping
// @Tags         bankfeed
// @Produce      json
// @Param        id path string true "Mapping ID" format(uuid)
// @Success      200 {object} dto.Response{data=bankfeedapp.MappingResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /api/v1/bankfeed/mappings/{id}/deactivate [post]
func (h *BankfeedAdminHandler) DeactivateMapping(c *gin.Context) {
	id, ok := h.ParseID(c)
	if !ok {
		return
	}
	mapping, err := h.svc.DeactivateMapping(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.audit(c).Info("Bank account mapping deactivated", zap.String("mapping_id", id.String()))
	h.Success(c, mapping)
}

// GetStatementLine godoc
// @ID           getBankfeedStatementLine
// @Summary      Look up a statement line
// @Description  Finds the statement line recorded for a Casso transaction id
// @Tags         bankfeed
// @Produce      json
// @Param        external_id path string true "Casso transaction ID"
// @Success      200 {object} dto.Response{data=bankfeedapp.StatementLineResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /api/v1/bankfeed/statement-lines/{external_id} [get]
func (h *BankfeedAdminHandler) GetStatementLine(c *gin.Context) {
	externalID := strings.TrimSpace(c.Param("external_id"))
	if externalID == "" {
		h.BadRequest(c, "external_id is required")
		return
	}
	line, err := h.svc.GetStatementLine(c.Request.Context(), externalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, line)
}

// SetParameter godoc
// @ID           setBankfeedParameter
// @Summary      Set a webhook setting
// @Description  Stores one transaction_webhook.* parameter; an empty value clears it
// @Tags         bankfeed
// @Accept       json
// @Produce      json
// @Param        key     path string                          true "Parameter key" example(transaction_webhook.debug)
// @Param        request body bankfeedapp.SetParameterRequest true "Value"
// @Success      200 {object} dto.Response{data=bankfeedapp.ParameterResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /api/v1/bankfeed/settings/{key} [put]
func (h *BankfeedAdminHandler) SetParameter(c *gin.Context) {
	var req bankfeedapp.SetParameterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	param, err := h.svc.SetParameter(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	// values may be secrets; only the key is logged
	h.audit(c).Info("Webhook setting changed",
		zap.String("key", param.Key),
		zap.Bool("cleared", req.Value == ""),
	)
	h.Success(c, param)
}

// audit returns the request logger tagged with the authenticated admin
func (h *BankfeedAdminHandler) audit(c *gin.Context) *zap.Logger {
	fields := []zap.Field{zap.String("actor", middleware.GetJWTSubject(c))}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		fields = append(fields, zap.String("role", claims.Role))
	}
	return logger.GetGinLogger(c).With(fields...)
}

func (h *BankfeedAdminHandler) optionalUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}
