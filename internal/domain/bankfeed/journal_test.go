package bankfeed

import (
	"errors"
	"testing"

	"github.com/erp/bankfeed/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJournal(t *testing.T) {
	companyID := uuid.New()

	t.Run("creates active journal", func(t *testing.T) {
		j, err := NewJournal(companyID, " Vietcombank ", "VCB", JournalTypeBank, " 0011 ")
		require.NoError(t, err)
		assert.Equal(t, "Vietcombank", j.Name)
		assert.Equal(t, "0011", j.BankAccountNumber)
		assert.True(t, j.Active)
		assert.True(t, j.IsBank())
		assert.NotEqual(t, uuid.Nil, j.ID)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewJournal(companyID, "X", "X", JournalType("crypto"), "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("requires company", func(t *testing.T) {
		_, err := NewJournal(uuid.Nil, "X", "X", JournalTypeBank, "")
		require.Error(t, err)
	})
}

func TestNewBankAccountMapping(t *testing.T) {
	companyID := uuid.New()
	bank, err := NewJournal(companyID, "Bank", "BNK", JournalTypeBank, "")
	require.NoError(t, err)

	t.Run("takes company from journal", func(t *testing.T) {
		m, err := NewBankAccountMapping("  ACC-1 ", bank)
		require.NoError(t, err)
		assert.Equal(t, "ACC-1", m.ExternalAccountIdentifier)
		assert.Equal(t, bank.ID, m.JournalID)
		assert.Equal(t, companyID, m.CompanyID)
		assert.True(t, m.Active)

		m.Deactivate()
		assert.False(t, m.Active)
		m.Activate()
		assert.True(t, m.Active)
	})

	t.Run("requires identifier", func(t *testing.T) {
		_, err := NewBankAccountMapping("   ", bank)
		require.Error(t, err)
	})

	t.Run("requires bank journal", func(t *testing.T) {
		cash, err := NewJournal(companyID, "Cash", "CSH", JournalTypeCash, "")
		require.NoError(t, err)

		_, err = NewBankAccountMapping("ACC-1", cash)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, shared.CodeBusinessRule, domainErr.Code)
	})
}

func TestNewStatementLineFromTransaction(t *testing.T) {
	journal, err := NewJournal(uuid.New(), "Bank", "BNK", JournalTypeBank, "")
	require.NoError(t, err)
	amount := decimal.RequireFromString("125000")
	date := DateOf(journal.CreatedAt)

	t.Run("narration prefers description", func(t *testing.T) {
		line := NewStatementLineFromTransaction(ExternalTransaction{
			ExternalID:  "TX1",
			Description: "Payment",
			Reference:   "REF",
			Amount:      &amount,
		}, journal, date)

		assert.Equal(t, "Payment", line.PaymentRef)
		assert.Equal(t, SourceCasso, line.Source)
		assert.Equal(t, journal.ID, line.JournalID)
		assert.Equal(t, journal.CompanyID, line.CompanyID)
		assert.True(t, amount.Equal(line.Amount))
	})

	t.Run("narration falls back to reference then id", func(t *testing.T) {
		line := NewStatementLineFromTransaction(ExternalTransaction{ExternalID: "TX1", Reference: "REF", Amount: &amount}, journal, date)
		assert.Equal(t, "REF", line.PaymentRef)

		line = NewStatementLineFromTransaction(ExternalTransaction{ExternalID: "TX1", Amount: &amount}, journal, date)
		assert.Equal(t, "TX1", line.PaymentRef)
	})
}

func TestSettings(t *testing.T) {
	assert.True(t, Settings{}.IPAllowed("1.2.3.4"))

	s := Settings{AllowedIPs: ParseIPList(" 10.0.0.1, ,10.0.0.2 ")}
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, s.AllowedIPs)
	assert.True(t, s.IPAllowed("10.0.0.2"))
	assert.False(t, s.IPAllowed("10.0.0.3"))

	assert.True(t, ParseFlag("1"))
	assert.True(t, ParseFlag("true"))
	assert.False(t, ParseFlag("0"))
	assert.False(t, ParseFlag(""))
	assert.True(t, IsKnownParam(ParamStrictMode))
	assert.False(t, IsKnownParam("web.base.url"))
}
