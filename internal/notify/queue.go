// Package notify runs receipt notifications off the request path.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"payment-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

var (
	ErrQueueFull   = errors.New("notification queue is full")
	ErrQueueClosed = errors.New("notification queue is closed")
)

// ReceiptProcessor delivers a single receipt.
type ReceiptProcessor interface {
	ProcessReceipt(ctx context.Context, receipt domain.Receipt) error
}

// Queue is a bounded in-memory queue drained by a fixed set of workers.
// Dispatch never blocks: when the buffer is full the receipt is rejected.
type Queue struct {
	processor ReceiptProcessor
	jobs      chan domain.Receipt

	mu     sync.RWMutex
	closed bool

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewQueue(processor ReceiptProcessor, workers, size int) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 0 {
		size = 0
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		processor: processor,
		jobs:      make(chan domain.Receipt, size),
		ctx:       ctx,
		cancel:    cancel,
	}
	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.worker(i)
	}
	log.WithFields(log.Fields{"workers": workers, "size": size}).Info("Notification queue started")
	return q
}

func (q *Queue) Dispatch(_ context.Context, receipt domain.Receipt) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.jobs <- receipt:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for receipt := range q.jobs {
		if err := q.process(receipt); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"worker":         id,
				"transaction_id": receipt.TransactionID,
			}).Error("Receipt notification failed")
		}
	}
}

func (q *Queue) process(receipt domain.Receipt) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing receipt: %v", r)
		}
	}()
	return q.processor.ProcessReceipt(q.ctx, receipt)
}

// Close stops accepting receipts and waits for the queued ones. When ctx
// expires first, in-flight work is cancelled and ctx.Err() is returned.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		return ctx.Err()
	}
}
