package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"payment-service/internal/domain"
)

type PostgresServiceRepository struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresServiceRepository(db *sql.DB, timeout time.Duration) *PostgresServiceRepository {
	return &PostgresServiceRepository{db: db, timeout: timeout}
}

// FindByName returns the service whose name matches case-insensitively.
// Names are unique on lower(name); the ORDER BY keeps the pick stable
// should that index ever be missing.
func (r *PostgresServiceRepository) FindByName(ctx context.Context, name string) (domain.Service, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `
        SELECT id, name, price FROM services
        WHERE lower(name) = lower($1)
        ORDER BY id
        LIMIT 1;
    `

	var s domain.Service
	err := r.db.QueryRowContext(ctx, query, name).Scan(&s.ID, &s.Name, &s.Price)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Service{}, ErrNotFound
	}
	if err != nil {
		return domain.Service{}, fmt.Errorf("failed to find service: %w", err)
	}
	return s, nil
}

func (r *PostgresServiceRepository) List(ctx context.Context) ([]domain.Service, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	const query = `SELECT id, name, price FROM services ORDER BY price, id;`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer rows.Close()

	var services []domain.Service
	for rows.Next() {
		var s domain.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Price); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
