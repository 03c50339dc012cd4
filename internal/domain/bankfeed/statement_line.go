package bankfeed

import (
	"time"

	"github.com/erp/bankfeed/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SourceCasso tags statement lines created from Casso webhooks
const SourceCasso = "casso"

// StatementLine is a single posted bank movement. The accounting subsystem owns
// it after creation; this service writes it once and never updates it.
type StatementLine struct {
	shared.BaseEntity
	JournalID uuid.UUID
	CompanyID uuid.UUID
	Date      time.Time
	// PaymentRef is the narration shown to accountants during reconciliation
	PaymentRef string
	Amount     decimal.Decimal

	Source            string
	ExternalID        string
	Reference         string
	AccountIdentifier string
	BankAbbreviation  string
	BankName          string
	CounterAccount    string
	VirtualAccount    string
	AccountNumber     string
	BankSubAccountID  string
}

// NewStatementLineFromTransaction builds the line for a validated transaction
// routed to journal. The narration prefers the description, then the provider
// reference, then the external id.
func NewStatementLineFromTransaction(tx ExternalTransaction, journal *Journal, date time.Time) *StatementLine {
	narration := tx.Description
	if narration == "" {
		narration = tx.Reference
	}
	if narration == "" {
		narration = tx.ExternalID
	}

	amount := decimal.Zero
	if tx.Amount != nil {
		amount = *tx.Amount
	}

	return &StatementLine{
		BaseEntity:        shared.NewBaseEntity(),
		JournalID:         journal.ID,
		CompanyID:         journal.CompanyID,
		Date:              date,
		PaymentRef:        narration,
		Amount:            amount,
		Source:            SourceCasso,
		ExternalID:        tx.ExternalID,
		Reference:         tx.Reference,
		AccountIdentifier: tx.AccountIdentifier,
		BankAbbreviation:  tx.BankAbbreviation,
		BankName:          tx.BankName,
		CounterAccount:    tx.CounterAccount,
		VirtualAccount:    tx.VirtualAccount,
		AccountNumber:     tx.AccountNumber,
		BankSubAccountID:  tx.BankSubAccountID,
	}
}
