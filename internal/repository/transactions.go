package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"payment-service/internal/domain"
)

type PostgresTransactionRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresTransactionRepository(db *sql.DB, timeout time.Duration) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{db: db, timeout: timeout}
}

// Insert stores t and fills in the server-assigned ID and CreatedAt.
// A second insert with the same transaction_id returns
// ErrDuplicateTransaction.
func (r *PostgresTransactionRepository) Insert(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
        INSERT INTO transactions (transaction_id, payer_name, payer_email, amount, currency, payment_status, service_type)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at;
    `

	err := r.db.QueryRowContext(ctx, query,
		t.TransactionID,
		t.PayerName,
		t.PayerEmail,
		t.Amount.StringFixed(2),
		t.Currency,
		t.PaymentStatus,
		t.ServiceType,
	).Scan(&t.ID, &t.CreatedAt)
	if isUniqueViolation(err) {
		return domain.Transaction{}, ErrDuplicateTransaction
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to insert transaction: %w", err)
	}
	return t, nil
}

func (r *PostgresTransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (domain.Transaction, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
        SELECT id, transaction_id, payer_name, payer_email, amount, currency, payment_status, service_type, created_at
        FROM transactions
        WHERE transaction_id = $1;
    `

	var t domain.Transaction
	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&t.ID,
		&t.TransactionID,
		&t.PayerName,
		&t.PayerEmail,
		&t.Amount,
		&t.Currency,
		&t.PaymentStatus,
		&t.ServiceType,
		&t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}
