package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"payment-service/internal/domain"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

const DefaultQueryTimeout = 5 * time.Second

var (
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateTransaction = errors.New("transaction already recorded")
)

// unique_violation
const pqUniqueViolation = "23505"

// Open creates the pool shared by all repositories. The caller owns it and
// must close it on shutdown.
func Open(ctx context.Context, url string, maxOpen, maxIdle int, maxLifetime time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(maxLifetime)

	ctx, cancel := context.WithTimeout(ctx, DefaultQueryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = DefaultQueryTimeout
	}
	return context.WithTimeout(ctx, d)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

type PostgresEmailRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresEmailRepository(db *sql.DB, timeout time.Duration) *PostgresEmailRepository {
	return &PostgresEmailRepository{db: db, timeout: timeout}
}

func (r *PostgresEmailRepository) SaveLog(ctx context.Context, l domain.EmailLog) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	log.WithFields(log.Fields{
		"transaction_id":  l.TransactionID,
		"recipient_email": l.RecipientEmail,
		"status":          l.Status,
	}).Debug("Saving email log to database")

	const query = `
        INSERT INTO email_logs (transaction_id, recipient_email, subject, status, error_message)
        VALUES ($1, $2, $3, $4, $5);
    `

	if _, err := r.db.ExecContext(ctx, query, l.TransactionID, l.RecipientEmail, l.Subject, string(l.Status), nullStringOrNil(l.ErrorMessage)); err != nil {
		return fmt.Errorf("failed to insert email log: %w", err)
	}
	return nil
}

func nullStringOrNil(ns sql.NullString) interface{} {
	if ns.Valid {
		return ns.String
	}
	return nil
}
