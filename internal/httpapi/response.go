package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

type errorBody struct {
	Code      apperr.Code `json:"code"`
	Message   string      `json:"message"`
	Details   any         `json:"details,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
}

type serviceResponse struct {
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

type transactionResponse struct {
	ID            int64       `json:"id"`
	TransactionID string      `json:"transaction_id"`
	PayerName     string      `json:"payer_name"`
	PayerEmail    string      `json:"payer_email"`
	Amount        json.Number `json:"amount"`
	Currency      string      `json:"currency"`
	PaymentStatus string      `json:"payment_status"`
	ServiceType   string      `json:"service_type"`
	CreatedAt     time.Time   `json:"created_at"`
}

func newServiceResponse(s domain.Service) serviceResponse {
	return serviceResponse{Name: s.Name, Price: json.Number(s.Price.StringFixed(2))}
}

func newTransactionResponse(t domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		TransactionID: t.TransactionID,
		PayerName:     t.PayerName,
		PayerEmail:    t.PayerEmail,
		Amount:        json.Number(t.Amount.StringFixed(2)),
		Currency:      t.Currency,
		PaymentStatus: t.PaymentStatus,
		ServiceType:   t.ServiceType,
		CreatedAt:     t.CreatedAt,
	}
}

// respondError writes the error envelope. Server-side failures are logged
// with their cause; the caller only sees the generic message.
func respondError(c *gin.Context, err error) {
	e := apperr.From(err)
	status := e.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	requestID := c.GetString(requestIDKey)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"request_id": requestID,
			"code":       e.Code,
			"path":       c.FullPath(),
		}).Error("Request failed")
	}

	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": errorBody{
			Code:      e.Code,
			Message:   e.Message,
			Details:   e.Details,
			RequestID: requestID,
		},
	})
}

// bindError turns a body decoding failure into a validation error, naming
// the field when the decoder knows it.
func bindError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return apperr.Field(typeErr.Field, fmt.Sprintf("%s has an invalid type", typeErr.Field))
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.Field("body", "Request body is too large")
	}
	return apperr.Field("body", "Request body must be a valid JSON object")
}
