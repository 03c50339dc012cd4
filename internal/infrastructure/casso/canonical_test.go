package casso

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize(t *testing.T) {
	t.Run("sorts keys recursively without whitespace", func(t *testing.T) {
		out, err := CanonicalizeBody([]byte(`{"b": 1, "a": {"z": true, "y": [3, {"d": null, "c": "x"}]}}`))
		require.NoError(t, err)
		assert.Equal(t, `{"a":{"y":[3,{"c":"x","d":null}],"z":true},"b":1}`, string(out))
	})

	t.Run("key order does not change output", func(t *testing.T) {
		a, err := CanonicalizeBody([]byte(`{"data":{"id":1,"amount":2000,"description":"x"},"error":0}`))
		require.NoError(t, err)
		b, err := CanonicalizeBody([]byte(`{"error":0,"data":{"description":"x","amount":2000,"id":1}}`))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("non ascii text is kept raw", func(t *testing.T) {
		out, err := CanonicalizeBody([]byte(`{"description":"Chuyển tiền <a&b>"}`))
		require.NoError(t, err)
		assert.Equal(t, `{"description":"Chuyển tiền <a&b>"}`, string(out))
	})

	t.Run("control characters are escaped", func(t *testing.T) {
		out, err := Canonicalize(map[string]any{"s": "a\"b\\c\nd\te\x01"})
		require.NoError(t, err)
		assert.Equal(t, `{"s":"a\"b\\c\nd\te\u0001"}`, string(out))
	})

	t.Run("numbers keep their text", func(t *testing.T) {
		out, err := CanonicalizeBody([]byte(`{"amount":-250000.50,"id":12345678901234567890}`))
		require.NoError(t, err)
		assert.Equal(t, `{"amount":-250000.50,"id":12345678901234567890}`, string(out))
	})

	t.Run("go numeric values", func(t *testing.T) {
		out, err := Canonicalize(map[string]any{"f": 1500.0, "g": 0.25, "i": 7, "n": json.Number("3")})
		require.NoError(t, err)
		assert.Equal(t, `{"f":1500,"g":0.25,"i":7,"n":3}`, string(out))
	})

	t.Run("empty body is an empty object", func(t *testing.T) {
		out, err := CanonicalizeBody(nil)
		require.NoError(t, err)
		assert.Equal(t, `{}`, string(out))
	})

	t.Run("trailing data is rejected", func(t *testing.T) {
		_, err := CanonicalizeBody([]byte(`{} {}`))
		assert.Error(t, err)
	})

	t.Run("unsupported go type", func(t *testing.T) {
		_, err := Canonicalize(map[string]any{"ch": make(chan int)})
		assert.ErrorIs(t, err, ErrUnsupportedValue)
	})
}

func TestTransactions(t *testing.T) {
	payload, err := DecodeBody([]byte(`{"error":0,"data":{"id":1}}`))
	require.NoError(t, err)

	txs, err := Transactions(payload)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, json.Number("1"), txs[0]["id"])

	for _, raw := range []string{`{"data":[{"id":1}]}`, `{"error":0}`, `[1,2]`, `{"data":"x"}`} {
		payload, err := DecodeBody([]byte(raw))
		require.NoError(t, err)
		_, err = Transactions(payload)
		assert.ErrorIs(t, err, ErrUnsupportedPayload, raw)
	}
}
