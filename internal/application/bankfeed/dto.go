package bankfeed

import (
	"encoding/json"
	"time"

	"github.com/erp/bankfeed/internal/domain/bankfeed"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Webhook results
// =============================================================================

// ItemResult is the per-transaction entry of a webhook response. Successful
// items carry the line fields, failed items carry Error=1 and Message.
type ItemResult struct {
	CassoID   string
	Reference string
	LineID    uuid.UUID
	Created   bool
	Error     int
	Message   string
}

// OK reports whether the item produced (or found) a statement line
func (r ItemResult) OK() bool {
	return r.Error == 0
}

// MarshalJSON renders {"casso_id","reference","line_id","created"} for
// successes and {"error":1,"message"} for failures
func (r ItemResult) MarshalJSON() ([]byte, error) {
	if !r.OK() {
		return json.Marshal(struct {
			Error   int    `json:"error"`
			Message string `json:"message"`
		}{r.Error, r.Message})
	}
	return json.Marshal(struct {
		CassoID   string    `json:"casso_id"`
		Reference string    `json:"reference"`
		LineID    uuid.UUID `json:"line_id"`
		Created   bool      `json:"created"`
	}{r.CassoID, r.Reference, r.LineID, r.Created})
}

func successResult(line *bankfeed.StatementLine, created bool) ItemResult {
	return ItemResult{
		CassoID:   line.ExternalID,
		Reference: line.Reference,
		LineID:    line.ID,
		Created:   created,
	}
}

func failureResult(err error) ItemResult {
	return ItemResult{Error: 1, Message: err.Error()}
}

// =============================================================================
// Journal DTOs
// =============================================================================

// CreateJournalRequest registers a journal
type CreateJournalRequest struct {
	CompanyID         uuid.UUID `json:"company_id" binding:"required"`
	Name              string    `json:"name" binding:"required,min=1,max=200"`
	Code              string    `json:"code" binding:"max=20"`
	Type              string    `json:"type" binding:"required,oneof=bank cash sale purchase general"`
	BankAccountNumber string    `json:"bank_account_number" binding:"max=64"`
}

// JournalResponse represents a journal in API responses
type JournalResponse struct {
	ID                uuid.UUID `json:"id"`
	CompanyID         uuid.UUID `json:"company_id"`
	Name              string    `json:"name"`
	Code              string    `json:"code"`
	Type              string    `json:"type"`
	BankAccountNumber string    `json:"bank_account_number,omitempty"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
}

// ToJournalResponse converts a domain Journal to JournalResponse
func ToJournalResponse(j *bankfeed.Journal) JournalResponse {
	return JournalResponse{
		ID:                j.ID,
		CompanyID:         j.CompanyID,
		Name:              j.Name,
		Code:              j.Code,
		Type:              string(j.Type),
		BankAccountNumber: j.BankAccountNumber,
		Active:            j.Active,
		CreatedAt:         j.CreatedAt,
	}
}

// =============================================================================
// Mapping DTOs
// =============================================================================

// CreateMappingRequest routes an external account identifier to a bank journal
type CreateMappingRequest struct {
	ExternalAccountIdentifier string    `json:"external_account_identifier" binding:"required,min=1,max=64"`
	JournalID                 uuid.UUID `json:"journal_id" binding:"required"`
}

// MappingListFilter narrows GET /mappings
type MappingListFilter struct {
	Identifier string     `form:"identifier" binding:"max=64"`
	CompanyID  *uuid.UUID `form:"-"`
	ActiveOnly bool       `form:"active_only"`
}

// MappingResponse represents a mapping in API responses
type MappingResponse struct {
	ID                        uuid.UUID `json:"id"`
	ExternalAccountIdentifier string    `json:"external_account_identifier"`
	JournalID                 uuid.UUID `json:"journal_id"`
	CompanyID                 uuid.UUID `json:"company_id"`
	Active                    bool      `json:"active"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
}

// ToMappingResponse converts a domain mapping to MappingResponse
func ToMappingResponse(m *bankfeed.BankAccountMapping) MappingResponse {
	return MappingResponse{
		ID:                        m.ID,
		ExternalAccountIdentifier: m.ExternalAccountIdentifier,
		JournalID:                 m.JournalID,
		CompanyID:                 m.CompanyID,
		Active:                    m.Active,
		CreatedAt:                 m.CreatedAt,
		UpdatedAt:                 m.UpdatedAt,
	}
}

// =============================================================================
// Statement line DTOs
// =============================================================================

// StatementLineResponse represents a statement line in API responses
type StatementLineResponse struct {
	ID                uuid.UUID       `json:"id"`
	JournalID         uuid.UUID       `json:"journal_id"`
	CompanyID         uuid.UUID       `json:"company_id"`
	Date              string          `json:"date"`
	PaymentRef        string          `json:"payment_ref"`
	Amount            decimal.Decimal `json:"amount"`
	Source            string          `json:"source"`
	ExternalID        string          `json:"external_id"`
	Reference         string          `json:"reference,omitempty"`
	AccountIdentifier string          `json:"account_identifier"`
	BankAbbreviation  string          `json:"bank_abbreviation,omitempty"`
	BankName          string          `json:"bank_name,omitempty"`
	CounterAccount    string          `json:"counter_account,omitempty"`
	VirtualAccount    string          `json:"virtual_account,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ToStatementLineResponse converts a domain StatementLine to StatementLineResponse
func ToStatementLineResponse(l *bankfeed.StatementLine) StatementLineResponse {
	return StatementLineResponse{
		ID:                l.ID,
		JournalID:         l.JournalID,
		CompanyID:         l.CompanyID,
		Date:              l.Date.Format("2006-01-02"),
		PaymentRef:        l.PaymentRef,
		Amount:            l.Amount,
		Source:            l.Source,
		ExternalID:        l.ExternalID,
		Reference:         l.Reference,
		AccountIdentifier: l.AccountIdentifier,
		BankAbbreviation:  l.BankAbbreviation,
		BankName:          l.BankName,
		CounterAccount:    l.CounterAccount,
		VirtualAccount:    l.VirtualAccount,
		CreatedAt:         l.CreatedAt,
	}
}

// =============================================================================
// Settings DTOs
// =============================================================================

// SetParameterRequest sets one transaction_webhook.* parameter
type SetParameterRequest struct {
	Value string `json:"value" binding:"max=4096"`
}

// ParameterResponse echoes a stored parameter. Secrets are never echoed.
type ParameterResponse struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}
