package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxAmount is the largest amount the NUMERIC(12,2) columns hold.
var MaxAmount = decimal.New(999999999999, -2)

const maxAmountLength = 32

var (
	ErrEmptyEmail         = errors.New("email is empty")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrInvalidAmount      = errors.New("amount is not a valid number")
	ErrAmountTooLong      = errors.New("amount has too many digits")
)

// Rule is one step of a validation chain. It returns the value, possibly
// normalized, or the reason to reject it.
type Rule[T any] func(T) (T, error)

// Chain applies rules in order and stops at the first failure.
func Chain[T any](v T, rules ...Rule[T]) (T, error) {
	for _, rule := range rules {
		next, err := rule(v)
		if err != nil {
			var zero T
			return zero, err
		}
		v = next
	}
	return v, nil
}

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	if err := validate.Var(email, "email"); err != nil {
		return ErrInvalidEmailFormat
	}
	return nil
}

// ServiceName checks a requested service name and returns the form used for
// the catalog lookup.
func ServiceName(raw string) (string, error) {
	return Chain(raw,
		func(s string) (string, error) {
			s = strings.TrimSpace(s)
			if s == "" {
				return "", apperr.Field("name", "Service name is required")
			}
			return s, nil
		},
		func(s string) (string, error) {
			return Sanitize(s), nil
		},
	)
}

// CustomAmount parses a user-chosen amount. A comma decimal separator is
// accepted. A zero floor disables the minimum check.
func CustomAmount(raw string, floor decimal.Decimal) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	amount, err := parseAmount(normalized)
	if errors.Is(err, ErrAmountTooLong) {
		return decimal.Zero, apperr.Field("amount", "Amount has too many digits")
	}
	if err != nil {
		return decimal.Zero, apperr.Field("amount", "Amount must be a valid number")
	}
	return Chain(amount,
		positive("amount", "Amount must be greater than 0"),
		atMost("amount", "Amount must be at most %s"),
		atLeast(floor),
	)
}

// parseAmount accepts plain decimal notation only and rounds to cents, so
// the rules after it see the value that is stored or returned.
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if len(s) > maxAmountLength {
		return decimal.Zero, ErrAmountTooLong
	}
	if err := validate.Var(s, "numeric"); err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return d.Round(2), nil
}

func positive(field, message string) Rule[decimal.Decimal] {
	return func(d decimal.Decimal) (decimal.Decimal, error) {
		if !d.IsPositive() {
			return d, apperr.Field(field, message)
		}
		return d, nil
	}
}

func atMost(field, format string) Rule[decimal.Decimal] {
	return func(d decimal.Decimal) (decimal.Decimal, error) {
		if d.GreaterThan(MaxAmount) {
			return d, apperr.Field(field, fmt.Sprintf(format, MaxAmount.StringFixed(2)))
		}
		return d, nil
	}
}

func atLeast(floor decimal.Decimal) Rule[decimal.Decimal] {
	return func(d decimal.Decimal) (decimal.Decimal, error) {
		if floor.IsPositive() && d.LessThan(floor) {
			return d, apperr.AmountTooLow(floor.StringFixed(2), d.StringFixed(2))
		}
		return d, nil
	}
}

// Transaction validates a completed-payment payload and produces the
// sanitized record to store. Nothing is persisted here.
func Transaction(in domain.TransactionInput, defaultCurrency string) (domain.Transaction, error) {
	in, err := Chain(in, trimInput, checkShape)
	if err != nil {
		return domain.Transaction{}, err
	}

	amount, err := parseAmount(in.Amount.String())
	if errors.Is(err, ErrAmountTooLong) {
		return domain.Transaction{}, apperr.Field("amount", "amount has too many digits")
	}
	if err != nil {
		return domain.Transaction{}, apperr.Field("amount", "amount must be numeric")
	}
	amount, err = Chain(amount,
		positive("amount", "amount must be greater than 0"),
		atMost("amount", "amount must be at most %s"),
	)
	if err != nil {
		return domain.Transaction{}, err
	}

	email, err := NormalizeEmail(in.PayerEmail)
	if err != nil {
		return domain.Transaction{}, apperr.Field("payer_email", "payer_email must be a valid email address")
	}

	currency := strings.ToUpper(in.Currency)
	if currency == "" {
		currency = strings.ToUpper(defaultCurrency)
	}

	return domain.Transaction{
		TransactionID: Sanitize(in.TransactionID),
		PayerName:     Sanitize(in.PayerName),
		PayerEmail:    Sanitize(email),
		Amount:        amount,
		Currency:      currency,
		PaymentStatus: Sanitize(in.PaymentStatus),
		ServiceType:   Sanitize(in.ServiceType),
	}, nil
}

func trimInput(in domain.TransactionInput) (domain.TransactionInput, error) {
	in.TransactionID = strings.TrimSpace(in.TransactionID)
	in.PayerName = strings.TrimSpace(in.PayerName)
	in.PayerEmail = strings.TrimSpace(in.PayerEmail)
	in.Amount = domain.FlexString(strings.TrimSpace(in.Amount.String()))
	in.Currency = strings.TrimSpace(in.Currency)
	in.PaymentStatus = strings.TrimSpace(in.PaymentStatus)
	in.ServiceType = strings.TrimSpace(in.ServiceType)
	return in, nil
}

func checkShape(in domain.TransactionInput) (domain.TransactionInput, error) {
	err := validate.Struct(in)
	if err == nil {
		return in, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return in, apperr.Internal(err)
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return in, apperr.Validation(fields...)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "numeric":
		return fmt.Sprintf("%s must be numeric", fe.Field())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "alpha":
		return fmt.Sprintf("%s must contain only letters", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

var ErrEmptyTransactionID = errors.New("transaction ID is empty")

func ValidateTransactionID(transactionID string) error {
	if strings.TrimSpace(transactionID) == "" {
		return ErrEmptyTransactionID
	}
	return nil
}

// ValidateReceipt checks a receipt pulled off the notification queue.
func ValidateReceipt(r domain.Receipt) error {
	if err := ValidateEmail(r.PayerEmail); err != nil {
		return err
	}
	return ValidateTransactionID(r.TransactionID)
}
