package dispatch

import (
	"context"
	"sync"

	"fieldsync/core/models"
	"fieldsync/core/reconcile"
)

// Item is one unit of queued work: the event and the handler resolved for it
type Item struct {
	Handler reconcile.Handler
	Event   models.Event
}

// Queue is an unbounded in-memory FIFO of dispatch items. Enqueue never
// blocks and always succeeds, which keeps the inbound request path decoupled
// from remote-API latency. The queue is deliberately not durable: items in
// flight at shutdown are lost, and recovery relies on the poll reconciler
// plus the idempotent handlers. A slow consumer is bounded only by memory.
type Queue struct {
	mu    sync.Mutex
	items []Item
	wake  chan struct{}
}

// NewQueue creates a new queue. The capacity hint only pre-sizes the backing
// slice; it is not a bound.
func NewQueue(capacityHint int) *Queue {
	return &Queue{
		items: make([]Item, 0, capacityHint),
		wake:  make(chan struct{}, 1),
	}
}

// Enqueue appends an item to the queue
func (q *Queue) Enqueue(item Item) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Dequeue removes and returns the oldest item, blocking until one is
// available. Returns false once ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (Item, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			item := q.items[0]
			q.items = q.items[1:]
			q.mu.Unlock()
			return item, true
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Item{}, false
		case <-q.wake:
		}
	}
}

// Len returns the number of queued items
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
