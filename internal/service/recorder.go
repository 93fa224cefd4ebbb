package service

import (
	"context"
	"errors"

	"payment-service/internal/apperr"
	"payment-service/internal/domain"
	"payment-service/internal/repository"
	"payment-service/internal/validator"

	log "github.com/sirupsen/logrus"
)

// TransactionRepository defines the interface for transaction data access
type TransactionRepository interface {
	Insert(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	GetByTransactionID(ctx context.Context, transactionID string) (domain.Transaction, error)
}

// Dispatcher hands a receipt to the background notification pipeline.
// Implementations must not block on delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, receipt domain.Receipt) error
}

// Recorder validates completed payments and stores each of them once.
type Recorder struct {
	transactions    TransactionRepository
	dispatcher      Dispatcher
	defaultCurrency string
}

func NewRecorder(transactions TransactionRepository, dispatcher Dispatcher, defaultCurrency string) *Recorder {
	return &Recorder{
		transactions:    transactions,
		dispatcher:      dispatcher,
		defaultCurrency: defaultCurrency,
	}
}

// Record validates in, inserts it and schedules the receipt. Validation
// failures never reach the repository. The receipt is queued after the
// insert and its outcome never changes the result.
func (r *Recorder) Record(ctx context.Context, in domain.TransactionInput) (domain.Transaction, error) {
	tx, err := validator.Transaction(in, r.defaultCurrency)
	if err != nil {
		log.WithFields(log.Fields{
			"error":          err,
			"transaction_id": in.TransactionID,
		}).Warn("Transaction validation failed")
		return domain.Transaction{}, err
	}

	logCtx := log.WithField("transaction_id", tx.TransactionID)

	stored, err := r.transactions.Insert(ctx, tx)
	if errors.Is(err, repository.ErrDuplicateTransaction) {
		logCtx.Warn("Duplicate transaction rejected")
		return domain.Transaction{}, apperr.DuplicateTransaction(tx.TransactionID)
	}
	if err != nil {
		logCtx.WithError(err).Error("Failed to store transaction")
		return domain.Transaction{}, apperr.Database(err)
	}
	logCtx.WithFields(log.Fields{
		"id":     stored.ID,
		"amount": stored.Amount.StringFixed(2),
	}).Info("Transaction recorded")

	if err := r.dispatcher.Dispatch(context.WithoutCancel(ctx), domain.NewReceipt(stored)); err != nil {
		logCtx.WithError(err).Error("Failed to schedule receipt notification")
	}
	return stored, nil
}

func (r *Recorder) Get(ctx context.Context, transactionID string) (domain.Transaction, error) {
	id := validator.Sanitize(transactionID)
	if id == "" {
		return domain.Transaction{}, apperr.Field("transaction_id", "transaction_id is required")
	}

	tx, err := r.transactions.GetByTransactionID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Transaction{}, apperr.TransactionNotFound()
	}
	if err != nil {
		log.WithError(err).WithField("transaction_id", id).Error("Failed to load transaction")
		return domain.Transaction{}, apperr.Database(err)
	}
	return tx, nil
}
