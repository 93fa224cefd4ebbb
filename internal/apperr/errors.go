// Package apperr holds the coded errors returned to API callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeServiceNotFound      Code = "SERVICE_NOT_FOUND"
	CodePriceTooLow          Code = "PRICE_TOO_LOW"
	CodeAmountTooLow         Code = "AMOUNT_TOO_LOW"
	CodeDuplicateTransaction Code = "DUPLICATE_TRANSACTION"
	CodeTransactionNotFound  Code = "TRANSACTION_NOT_FOUND"
	CodeMissingClientID      Code = "MISSING_PAYPAL_CLIENT_ID"
	CodeDatabase             Code = "DATABASE_ERROR"
	CodeInternal             Code = "INTERNAL_ERROR"
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is an error that is safe to show to the caller. The wrapped cause,
// if any, is for logs only.
type Error struct {
	Code    Code
	Message string
	Status  int
	Details any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches on code so callers can compare against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is.
var (
	ErrValidation           = &Error{Code: CodeValidation}
	ErrServiceNotFound      = &Error{Code: CodeServiceNotFound}
	ErrPriceTooLow          = &Error{Code: CodePriceTooLow}
	ErrAmountTooLow         = &Error{Code: CodeAmountTooLow}
	ErrDuplicateTransaction = &Error{Code: CodeDuplicateTransaction}
	ErrTransactionNotFound  = &Error{Code: CodeTransactionNotFound}
	ErrMissingClientID      = &Error{Code: CodeMissingClientID}
	ErrDatabase             = &Error{Code: CodeDatabase}
	ErrInternal             = &Error{Code: CodeInternal}
)

func Validation(fields ...FieldError) *Error {
	msg := "Invalid request"
	if len(fields) == 1 {
		msg = fields[0].Message
	}
	e := &Error{Code: CodeValidation, Message: msg, Status: http.StatusBadRequest}
	if len(fields) > 0 {
		e.Details = fields
	}
	return e
}

func Field(field, message string) *Error {
	return Validation(FieldError{Field: field, Message: message})
}

func ServiceNotFound() *Error {
	return &Error{Code: CodeServiceNotFound, Message: "Service not found", Status: http.StatusNotFound}
}

func PriceTooLow(floor string) *Error {
	return &Error{
		Code:    CodePriceTooLow,
		Message: fmt.Sprintf("Service price is below the minimum of %s", floor),
		Status:  http.StatusBadRequest,
	}
}

func AmountTooLow(floor, got string) *Error {
	return &Error{
		Code:    CodeAmountTooLow,
		Message: fmt.Sprintf("Amount must be at least %s, got %s", floor, got),
		Status:  http.StatusBadRequest,
	}
}

func DuplicateTransaction(transactionID string) *Error {
	return &Error{
		Code:    CodeDuplicateTransaction,
		Message: "Transaction has already been recorded",
		Status:  http.StatusConflict,
		Details: map[string]string{"transaction_id": transactionID},
	}
}

func TransactionNotFound() *Error {
	return &Error{Code: CodeTransactionNotFound, Message: "Transaction not found", Status: http.StatusNotFound}
}

func MissingClientID() *Error {
	return &Error{
		Code:    CodeMissingClientID,
		Message: "Payment provider is not configured",
		Status:  http.StatusInternalServerError,
	}
}

func Database(cause error) *Error {
	return &Error{
		Code:    CodeDatabase,
		Message: "A database error occurred",
		Status:  http.StatusInternalServerError,
		cause:   cause,
	}
}

func Internal(cause error) *Error {
	return &Error{
		Code:    CodeInternal,
		Message: "An internal error occurred",
		Status:  http.StatusInternalServerError,
		cause:   cause,
	}
}

// From converts any error into an *Error. Unknown errors become
// INTERNAL_ERROR with the original kept as cause.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
