// Package bus decouples fill emission from slower sinks with a bounded
// in-memory queue.
package bus

import (
	"context"
	"sync/atomic"

	"github.com/yanun0323/errors"

	"main/internal/model"
)

var (
	ErrQueueFull   = errors.New("fill queue full")
	ErrQueueClosed = errors.New("fill queue closed")
)

// Queue is a bounded, non-blocking transaction queue.
type Queue struct {
	ch     chan model.Transaction
	closed uint32
	drops  uint64
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan model.Transaction, capacity)}
}

// TryPublish enqueues a transaction without blocking.
func (q *Queue) TryPublish(txn model.Transaction) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return ErrQueueClosed
	}
	select {
	case q.ch <- txn:
		return nil
	default:
		atomic.AddUint64(&q.drops, 1)
		return ErrQueueFull
	}
}

// Drops returns the number of rejected publishes.
func (q *Queue) Drops() uint64 {
	return atomic.LoadUint64(&q.drops)
}

// Close stops the queue from accepting new transactions.
func (q *Queue) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.ch)
	}
}

// Run consumes transactions until the context is done or the queue is
// closed and drained.
func (q *Queue) Run(ctx context.Context, handler func(model.Transaction)) {
	for {
		select {
		case <-ctx.Done():
			return
		case txn, ok := <-q.ch:
			if !ok {
				return
			}
			handler(txn)
		}
	}
}
