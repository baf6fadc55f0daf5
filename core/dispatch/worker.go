package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"fieldsync/core/reconcile"
)

// Worker is the single consumer draining the dispatch queue in FIFO order.
// One worker means no concurrent handler execution: two events touching the
// same deal/job pair are applied in arrival order, and the side effects of
// one handler are fully committed before the next begins.
type Worker struct {
	queue    *Queue
	stopChan chan struct{}
}

// NewWorker creates a new worker for the given queue
func NewWorker(queue *Queue) *Worker {
	return &Worker{
		queue:    queue,
		stopChan: make(chan struct{}),
	}
}

// Start drains the queue until ctx is done or Stop is called. Handler
// failures are contained here: they are logged and the worker moves on, so
// one bad event never stalls the queue. No retry is attempted.
func (w *Worker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-w.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	for {
		item, ok := w.queue.Dequeue(ctx)
		if !ok {
			return
		}
		w.process(ctx, item)
	}
}

// Stop stops the worker
func (w *Worker) Stop() {
	close(w.stopChan)
}

func (w *Worker) process(ctx context.Context, item Item) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Handler panicked",
				"event", item.Event.ID, "type", item.Event.Type, "panic", r)
		}
	}()

	err := item.Handler.Handle(ctx, item.Event)
	switch {
	case err == nil:
		slog.Info("Event reconciled", "event", item.Event.ID, "type", item.Event.Type)
	case errors.Is(err, reconcile.ErrGuardFailed):
		// Expected no-op, not a failure.
		slog.Info("Event skipped", "event", item.Event.ID, "type", item.Event.Type, "reason", err)
	default:
		slog.Error("Event processing failed",
			"event", item.Event.ID, "type", item.Event.Type, "error", err)
	}
}
