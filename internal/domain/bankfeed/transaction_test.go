package bankfeed

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/erp/bankfeed/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeData(t *testing.T, raw string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var data map[string]any
	require.NoError(t, dec.Decode(&data))
	return data
}

func TestParseExternalTransaction(t *testing.T) {
	t.Run("maps webhook v2 fields", func(t *testing.T) {
		data := decodeData(t, `{
			"id": 123456789,
			"reference": "FT24123",
			"description": "Thanh toan don hang",
			"amount": 250000.50,
			"transactionDateTime": "2024-05-01 10:20:30",
			"accountNumber": " 0011001234567 ",
			"bankName": "Vietcombank",
			"bankAbbreviation": "VCB",
			"corresponsiveAccount": "999888",
			"virtualAccountNumber": "VA01"
		}`)

		tx, err := ParseExternalTransaction(data)
		require.NoError(t, err)

		assert.Equal(t, "123456789", tx.ExternalID)
		assert.Equal(t, "FT24123", tx.Reference)
		assert.Equal(t, "Thanh toan don hang", tx.Description)
		require.NotNil(t, tx.Amount)
		assert.Equal(t, "250000.5", tx.Amount.String())
		assert.Equal(t, "0011001234567", tx.AccountNumber)
		assert.Equal(t, "0011001234567", tx.AccountIdentifier)
		assert.Equal(t, "999888", tx.CounterAccount)
		assert.Equal(t, "VA01", tx.VirtualAccount)
		assert.Equal(t, "VCB", tx.BankAbbreviation)
		assert.Equal(t, "Vietcombank", tx.BankName)
		assert.NoError(t, tx.Validate())
	})

	t.Run("counter account keys are tried in order", func(t *testing.T) {
		tx, err := ParseExternalTransaction(map[string]any{
			"counterAccountNumber":       "",
			"corresponsiveAccount":       "",
			"corresponsiveAccountNumber": "777",
		})
		require.NoError(t, err)
		assert.Equal(t, "777", tx.CounterAccount)
	})

	t.Run("falls back to bank sub account id", func(t *testing.T) {
		tx, err := ParseExternalTransaction(map[string]any{
			"id":              "abc",
			"amount":          float64(-1000),
			"bank_sub_acc_id": "SUB-7",
		})
		require.NoError(t, err)
		assert.Equal(t, "SUB-7", tx.AccountIdentifier)
		assert.Empty(t, tx.AccountNumber)
		assert.Equal(t, "-1000", tx.Amount.String())
	})

	t.Run("numeric string amount", func(t *testing.T) {
		tx, err := ParseExternalTransaction(map[string]any{"amount": "1500.25"})
		require.NoError(t, err)
		assert.Equal(t, "1500.25", tx.Amount.String())
	})

	t.Run("non numeric amount is a validation error", func(t *testing.T) {
		_, err := ParseExternalTransaction(map[string]any{"amount": "lots"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("large integer id keeps all digits", func(t *testing.T) {
		tx, err := ParseExternalTransaction(map[string]any{"id": float64(9007199254)})
		require.NoError(t, err)
		assert.Equal(t, "9007199254", tx.ExternalID)
	})
}

func TestExternalTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		message string
	}{
		{
			name:    "missing id",
			data:    map[string]any{"amount": float64(1), "accountNumber": "A"},
			message: "Missing Casso transaction id (data.id)",
		},
		{
			name:    "missing amount",
			data:    map[string]any{"id": "1", "accountNumber": "A"},
			message: "Missing amount",
		},
		{
			name:    "missing account",
			data:    map[string]any{"id": "1", "amount": float64(1)},
			message: "Missing account identifier (accountNumber)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := ParseExternalTransaction(tt.data)
			require.NoError(t, err)

			err = tx.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
			assert.True(t, errors.Is(err, shared.ErrValidation))
		})
	}
}
