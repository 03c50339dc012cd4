package bankfeed

import (
	"strings"

	"github.com/erp/bankfeed/internal/domain/shared"
	"github.com/google/uuid"
)

// JournalType classifies an accounting journal
type JournalType string

const (
	JournalTypeBank     JournalType = "bank"
	JournalTypeCash     JournalType = "cash"
	JournalTypeSale     JournalType = "sale"
	JournalTypePurchase JournalType = "purchase"
	JournalTypeGeneral  JournalType = "general"
)

// IsValid reports whether the journal type is known
func (t JournalType) IsValid() bool {
	switch t {
	case JournalTypeBank, JournalTypeCash, JournalTypeSale, JournalTypePurchase, JournalTypeGeneral:
		return true
	}
	return false
}

// Journal is the internal ledger that statement lines are posted against.
// The accounting subsystem owns journals; this service only reads them, apart
// from the admin endpoints used to register bank journals.
type Journal struct {
	shared.BaseEntity
	CompanyID         uuid.UUID
	Name              string
	Code              string
	Type              JournalType
	BankAccountNumber string
	Active            bool
}

// NewJournal creates an active journal
func NewJournal(companyID uuid.UUID, name, code string, journalType JournalType, bankAccountNumber string) (*Journal, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Company is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Journal name is required")
	}
	if !journalType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid journal type: "+string(journalType))
	}
	return &Journal{
		BaseEntity:        shared.NewBaseEntity(),
		CompanyID:         companyID,
		Name:              name,
		Code:              strings.TrimSpace(code),
		Type:              journalType,
		BankAccountNumber: strings.TrimSpace(bankAccountNumber),
		Active:            true,
	}, nil
}

// IsBank reports whether the journal can receive bank statement lines
func (j *Journal) IsBank() bool {
	return j.Type == JournalTypeBank
}
