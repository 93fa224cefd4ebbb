package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"payment-service/internal/domain"
	"payment-service/internal/repository"
)

type mockServiceRepository struct {
	FindByNameFunc func(ctx context.Context, name string) (domain.Service, error)
	ListFunc       func(ctx context.Context) ([]domain.Service, error)
}

func (m *mockServiceRepository) FindByName(ctx context.Context, name string) (domain.Service, error) {
	return m.FindByNameFunc(ctx, name)
}

func (m *mockServiceRepository) List(ctx context.Context) ([]domain.Service, error) {
	return m.ListFunc(ctx)
}

// catalogOf answers lookups from an in-memory list, case-insensitively.
func catalogOf(services ...domain.Service) *mockServiceRepository {
	return &mockServiceRepository{
		FindByNameFunc: func(_ context.Context, name string) (domain.Service, error) {
			for _, s := range services {
				if strings.EqualFold(s.Name, name) {
					return s, nil
				}
			}
			return domain.Service{}, repository.ErrNotFound
		},
		ListFunc: func(context.Context) ([]domain.Service, error) {
			return services, nil
		},
	}
}

// memoryTransactions enforces a unique transaction_id like the real table.
type memoryTransactions struct {
	mu      sync.Mutex
	rows    map[string]domain.Transaction
	nextID  int64
	inserts int
	err     error
}

func newMemoryTransactions() *memoryTransactions {
	return &memoryTransactions{rows: map[string]domain.Transaction{}}
}

func (m *memoryTransactions) Insert(_ context.Context, t domain.Transaction) (domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.err != nil {
		return domain.Transaction{}, m.err
	}
	if _, ok := m.rows[t.TransactionID]; ok {
		return domain.Transaction{}, repository.ErrDuplicateTransaction
	}
	m.nextID++
	t.ID = m.nextID
	t.CreatedAt = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	m.rows[t.TransactionID] = t
	return t, nil
}

func (m *memoryTransactions) GetByTransactionID(_ context.Context, id string) (domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.Transaction{}, m.err
	}
	t, ok := m.rows[id]
	if !ok {
		return domain.Transaction{}, repository.ErrNotFound
	}
	return t, nil
}

type recordingDispatcher struct {
	mu       sync.Mutex
	receipts []domain.Receipt
	err      error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, r domain.Receipt) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.receipts = append(d.receipts, r)
	return d.err
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.receipts)
}

type mockSender struct {
	mu    sync.Mutex
	calls int
	errs  []error
	last  struct{ to, subject, body string }
}

func (m *mockSender) SendEmail(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.last.to, m.last.subject, m.last.body = to, subject, body
	if len(m.errs) >= m.calls {
		return m.errs[m.calls-1]
	}
	return nil
}

type mockEmailRepository struct {
	logs []domain.EmailLog
	err  error
}

func (m *mockEmailRepository) SaveLog(_ context.Context, l domain.EmailLog) error {
	m.logs = append(m.logs, l)
	return m.err
}
