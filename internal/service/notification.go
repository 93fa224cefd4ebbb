package service

import (
	"context"
	"database/sql"
	"fmt"
	"html"
	"strings"
	"time"

	"payment-service/internal/domain"
	"payment-service/internal/sender"
	"payment-service/internal/validator"

	log "github.com/sirupsen/logrus"
)

// EmailRepository defines the interface for email log data access
type EmailRepository interface {
	SaveLog(ctx context.Context, log domain.EmailLog) error
}

type NotificationService struct {
	emailSender     sender.EmailSender
	emailRepository EmailRepository
	maxAttempts     int
	initialDelay    time.Duration
}

func NewNotificationService(emailSender sender.EmailSender, emailRepository EmailRepository, maxAttempts int, initialDelay time.Duration) *NotificationService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &NotificationService{
		emailSender:     emailSender,
		emailRepository: emailRepository,
		maxAttempts:     maxAttempts,
		initialDelay:    initialDelay,
	}
}

// ProcessReceipt mails the receipt, retrying with exponential backoff, and
// records the outcome in the email log.
func (s *NotificationService) ProcessReceipt(ctx context.Context, receipt domain.Receipt) error {
	// stored addresses are HTML-escaped like every other field
	receipt.PayerEmail = html.UnescapeString(receipt.PayerEmail)
	if err := validator.ValidateReceipt(receipt); err != nil {
		log.WithFields(log.Fields{
			"error":          err,
			"transaction_id": receipt.TransactionID,
		}).Error("Receipt validation failed")
		return fmt.Errorf("validation error: %w", err)
	}

	subject := fmt.Sprintf("Payment receipt %s", receipt.TransactionID)
	body := receiptBody(receipt)

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	delay := s.initialDelay
	var err error
retry:
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		err = s.emailSender.SendEmail(ctx, receipt.PayerEmail, subject, body)
		if err == nil {
			if attempt > 1 {
				log.WithFields(log.Fields{
					"attempt":      attempt,
					"max_attempts": s.maxAttempts,
					"email":        receipt.PayerEmail,
				}).Info("Email sent successfully after retry")
			}
			break
		}

		if attempt < s.maxAttempts {
			log.WithFields(log.Fields{
				"attempt":      attempt,
				"max_attempts": s.maxAttempts,
				"error":        err,
				"email":        receipt.PayerEmail,
			}).Warn("Failed to send email, retrying...")

			select {
			case <-ctx.Done():
				break retry
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	logEntry := domain.EmailLog{
		TransactionID:  receipt.TransactionID,
		RecipientEmail: receipt.PayerEmail,
		Subject:        subject,
	}

	if err != nil {
		log.WithError(err).WithField("transaction_id", receipt.TransactionID).Error("Failed to send receipt email")
		logEntry.Status = domain.StatusFailed
		logEntry.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
	} else {
		log.WithField("email", receipt.PayerEmail).Info("Receipt email sent successfully")
		logEntry.Status = domain.StatusSent
	}

	// the send may have used up ctx; the audit row gets its own deadline
	saveCtx, saveCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer saveCancel()
	if err := s.emailRepository.SaveLog(saveCtx, logEntry); err != nil {
		log.WithError(err).Error("Failed to save email log to database")
		return err
	}

	return nil
}

func receiptBody(r domain.Receipt) string {
	var b strings.Builder
	// stored fields are HTML-escaped; the receipt is plain text
	name := html.UnescapeString(r.PayerName)
	if name == "" {
		name = "customer"
	}
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "We received your payment of %s %s.\n", r.Amount, r.Currency)
	if r.ServiceType != "" {
		fmt.Fprintf(&b, "Purchased: %s\n", html.UnescapeString(r.ServiceType))
	}
	fmt.Fprintf(&b, "Transaction ID: %s\n\nThank you for your purchase!\n", r.TransactionID)
	return b.String()
}
