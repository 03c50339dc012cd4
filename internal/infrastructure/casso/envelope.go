package casso

import "errors"

// ErrUnsupportedPayload means the body has no transaction object under "data"
var ErrUnsupportedPayload = errors.New("casso: unsupported payload")

// Transactions extracts the transaction list from a decoded webhook V2 body.
// V2 deliveries carry exactly one transaction object in "data".
func Transactions(payload any) ([]map[string]any, error) {
	body, ok := payload.(map[string]any)
	if !ok {
		return nil, ErrUnsupportedPayload
	}
	data, ok := body["data"].(map[string]any)
	if !ok {
		return nil, ErrUnsupportedPayload
	}
	return []map[string]any{data}, nil
}
