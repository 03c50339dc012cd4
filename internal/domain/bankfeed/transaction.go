package bankfeed

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Accepted source keys per field, in priority order. The first key holding a
// non-empty value wins.
var (
	externalIDKeys       = []string{"id"}
	descriptionKeys      = []string{"description"}
	amountKeys           = []string{"amount"}
	transactionTimeKeys  = []string{"transactionDateTime"}
	accountNumberKeys    = []string{"accountNumber"}
	bankSubAccountIDKeys = []string{"bank_sub_acc_id"}
	counterAccountKeys   = []string{"counterAccountNumber", "corresponsiveAccount", "corresponsiveAccountNumber"}
	virtualAccountKeys   = []string{"virtualAccountNumber", "virtualAccount"}
	bankAbbreviationKeys = []string{"bankAbbreviation"}
	bankNameKeys         = []string{"bankName"}
	referenceKeys        = []string{"reference"}
)

// ExternalTransaction is one bank movement as reported by the provider.
// It is transient: only the resulting StatementLine is persisted.
type ExternalTransaction struct {
	ExternalID          string
	Description         string
	Amount              *decimal.Decimal
	TransactionDateTime string
	// AccountIdentifier is AccountNumber, or BankSubAccountID when the
	// account number is absent. It drives journal routing.
	AccountIdentifier string
	AccountNumber     string
	BankSubAccountID  string
	CounterAccount    string
	VirtualAccount    string
	BankAbbreviation  string
	BankName          string
	Reference         string
}

// ParseExternalTransaction maps a decoded webhook `data` object onto an
// ExternalTransaction. Only type problems are reported here; presence of the
// required fields is checked by Validate.
func ParseExternalTransaction(data map[string]any) (ExternalTransaction, error) {
	tx := ExternalTransaction{
		ExternalID:          firstString(data, externalIDKeys),
		Description:         firstString(data, descriptionKeys),
		TransactionDateTime: firstString(data, transactionTimeKeys),
		AccountNumber:       strings.TrimSpace(firstString(data, accountNumberKeys)),
		BankSubAccountID:    strings.TrimSpace(firstString(data, bankSubAccountIDKeys)),
		CounterAccount:      firstString(data, counterAccountKeys),
		VirtualAccount:      firstString(data, virtualAccountKeys),
		BankAbbreviation:    firstString(data, bankAbbreviationKeys),
		BankName:            firstString(data, bankNameKeys),
		Reference:           firstString(data, referenceKeys),
	}
	tx.ExternalID = strings.TrimSpace(tx.ExternalID)

	tx.AccountIdentifier = tx.AccountNumber
	if tx.AccountIdentifier == "" {
		tx.AccountIdentifier = tx.BankSubAccountID
	}

	for _, key := range amountKeys {
		raw, ok := data[key]
		if !ok || raw == nil {
			continue
		}
		amount, err := parseAmount(raw)
		if err != nil {
			return tx, err
		}
		tx.Amount = &amount
		break
	}

	return tx, nil
}

// Validate checks the fields without which no statement line can be created.
func (tx ExternalTransaction) Validate() error {
	if tx.ExternalID == "" {
		return NewValidationError("Missing Casso transaction id (data.id)")
	}
	if tx.Amount == nil {
		return NewValidationError("Missing amount")
	}
	if tx.AccountIdentifier == "" {
		return NewValidationError("Missing account identifier (accountNumber)")
	}
	return nil
}

func parseAmount(raw any) (decimal.Decimal, error) {
	switch v := raw.(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, NewValidationError("Invalid amount: " + v.String())
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, NewValidationError("Invalid amount: " + v)
		}
		return d, nil
	default:
		return decimal.Zero, NewValidationError("Invalid amount type")
	}
}

func firstString(data map[string]any, keys []string) string {
	for _, key := range keys {
		if s := stringValue(data[key]); s != "" {
			return s
		}
	}
	return ""
}

// stringValue renders scalar JSON values as text. Provider ids arrive either as
// strings or as integers, so numbers are formatted without exponent.
func stringValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		if !val {
			return ""
		}
		return "true"
	default:
		return ""
	}
}
