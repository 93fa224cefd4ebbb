package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexStringAcceptsStringsAndNumbers(t *testing.T) {
	var body struct {
		Amount FlexString `json:"amount"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"amount":"12,34"}`), &body))
	assert.Equal(t, FlexString("12,34"), body.Amount)

	require.NoError(t, json.Unmarshal([]byte(`{"amount":75.5}`), &body))
	assert.Equal(t, FlexString("75.5"), body.Amount)

	var empty struct {
		Amount FlexString `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":null}`), &empty))
	assert.Equal(t, FlexString(""), empty.Amount)
}

func TestFlexStringRejectsOtherKinds(t *testing.T) {
	var body struct {
		Amount FlexString `json:"amount"`
	}

	err := json.Unmarshal([]byte(`{"amount":true}`), &body)
	var typeErr *json.UnmarshalTypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "bool", typeErr.Value)
}

func TestNewReceiptFormatsAmount(t *testing.T) {
	tx := Transaction{
		TransactionID: "TX1",
		PayerEmail:    "jane@example.com",
		Amount:        decimal.RequireFromString("150"),
		Currency:      "USD",
	}

	r := NewReceipt(tx)
	assert.Equal(t, "150.00", r.Amount)
	assert.Equal(t, "TX1", r.TransactionID)
}
