package bankfeed

import (
	"strings"

	"github.com/erp/bankfeed/internal/domain/shared"
	"github.com/google/uuid"
)

// BankAccountMapping routes an external account identifier (bank account number
// or Casso sub account id) to a bank journal. The company is taken from the journal.
type BankAccountMapping struct {
	shared.BaseEntity
	ExternalAccountIdentifier string
	JournalID                 uuid.UUID
	CompanyID                 uuid.UUID
	Active                    bool
}

// NewBankAccountMapping creates an active mapping for a bank journal
func NewBankAccountMapping(identifier string, journal *Journal) (*BankAccountMapping, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "External account identifier is required")
	}
	if journal == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Journal is required")
	}
	if !journal.IsBank() {
		return nil, shared.NewDomainError(shared.CodeBusinessRule, "Mapped journal must be of type 'bank'")
	}
	return &BankAccountMapping{
		BaseEntity:                shared.NewBaseEntity(),
		ExternalAccountIdentifier: identifier,
		JournalID:                 journal.ID,
		CompanyID:                 journal.CompanyID,
		Active:                    true,
	}, nil
}

// Activate marks the mapping as usable for routing
func (m *BankAccountMapping) Activate() {
	m.Active = true
	m.Touch()
}

// Deactivate excludes the mapping from routing without deleting it
func (m *BankAccountMapping) Deactivate() {
	m.Active = false
	m.Touch()
}
