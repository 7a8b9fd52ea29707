package notification

import (
	"context"
	"log/slog"
	"sync"
)

// Publisher is what the domain services depend on.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// Service is an in-process queue drained by a fixed worker pool.
type Service interface {
	Publisher
	Start(workers int)
	Stop(ctx context.Context) error
}

// Handler processes one event. The dispatcher is the production handler.
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

type queue struct {
	ch      chan Event
	handler Handler
	log     *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func New(size int, h Handler, log *slog.Logger) Service {
	if size <= 0 {
		size = 256
	}
	if log == nil {
		log = slog.Default()
	}
	return &queue{ch: make(chan Event, size), handler: h, log: log.With("component", "notifications")}
}

// Publish never blocks the request path. A full queue drops the event.
func (q *queue) Publish(ctx context.Context, ev Event) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.log.WarnContext(ctx, "dropping notification", "kind", ev.Kind, "error", ErrClosed)
		return
	}
	select {
	case q.ch <- ev:
	default:
		q.log.WarnContext(ctx, "dropping notification", "kind", ev.Kind, "error", ErrQueueFull)
	}
}

func (q *queue) Start(workers int) {
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.work(i)
	}
	q.log.Info("notification workers started", "workers", workers, "queue", cap(q.ch))
}

func (q *queue) work(id int) {
	defer q.wg.Done()
	for ev := range q.ch {
		if err := q.handler.Handle(context.Background(), ev); err != nil {
			q.log.Warn("notification failed", "worker", id, "kind", ev.Kind, "error", err)
		}
	}
}

// Stop closes the queue and waits for queued events to drain, or for ctx.
func (q *queue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
