package domain

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Service is a catalog entry offered for purchase.
type Service struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// TransactionInput is the raw payload reported by the client after the
// payment provider captured the payment. Amount is kept as text until it
// passes validation.
type TransactionInput struct {
	TransactionID string     `json:"transaction_id" validate:"required"`
	PayerName     string     `json:"payer_name" validate:"required"`
	PayerEmail    string     `json:"payer_email" validate:"required,email"`
	Amount        FlexString `json:"amount" validate:"required,numeric"`
	Currency      string     `json:"currency" validate:"omitempty,len=3,alpha"`
	PaymentStatus string     `json:"payment_status" validate:"max=64"`
	ServiceType   string     `json:"service_type" validate:"max=255"`
}

// Transaction is the durable record of one completed payment capture.
type Transaction struct {
	ID            int64
	TransactionID string
	PayerName     string
	PayerEmail    string
	Amount        decimal.Decimal
	Currency      string
	PaymentStatus string
	ServiceType   string
	CreatedAt     time.Time
}

// Receipt is the notification payload sent after a transaction is recorded.
type Receipt struct {
	TransactionID string `json:"transaction_id"`
	PayerName     string `json:"payer_name"`
	PayerEmail    string `json:"payer_email"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	ServiceType   string `json:"service_type"`
}

// NewReceipt builds the receipt for a stored transaction.
func NewReceipt(t Transaction) Receipt {
	return Receipt{
		TransactionID: t.TransactionID,
		PayerName:     t.PayerName,
		PayerEmail:    t.PayerEmail,
		Amount:        t.Amount.StringFixed(2),
		Currency:      t.Currency,
		ServiceType:   t.ServiceType,
	}
}

type EmailStatus string

const (
	StatusSent   EmailStatus = "sent"
	StatusFailed EmailStatus = "failed"
)

type EmailLog struct {
	TransactionID  string
	RecipientEmail string
	Subject        string
	Status         EmailStatus
	ErrorMessage   sql.NullString
}
