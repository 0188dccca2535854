package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Errors returned by AsyncHandler.HandleEvent.
var (
	ErrQueueClosed = errors.New("event queue is closed")
	ErrQueueFull   = errors.New("event queue is full")
)

// AsyncConfig sizes an AsyncHandler.
type AsyncConfig struct {
	// QueueSize bounds undelivered events. Defaults to 256.
	QueueSize int
	// WorkerCount is the number of delivery goroutines. Defaults to 2.
	WorkerCount int
	// DeliveryTimeout bounds one delivery to the wrapped handler.
	// Defaults to 5s.
	DeliveryTimeout time.Duration
}

// AsyncHandler queues events and delivers them to a wrapped handler from a
// pool of workers, so a slow sink never delays a tutor turn. Events are
// dropped with ErrQueueFull when the queue is at capacity.
type AsyncHandler struct {
	next    EventHandler
	queue   chan *Event
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ EventHandler = (*AsyncHandler)(nil)

// NewAsyncHandler starts the workers. It panics if next is nil.
func NewAsyncHandler(next EventHandler, cfg AsyncConfig, logger *slog.Logger) *AsyncHandler {
	if next == nil {
		panic("next handler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 5 * time.Second
	}

	h := &AsyncHandler{
		next:    next,
		queue:   make(chan *Event, cfg.QueueSize),
		timeout: cfg.DeliveryTimeout,
		logger:  logger.With(slog.String("component", "async_event_handler")),
	}
	for i := 0; i < cfg.WorkerCount; i++ {
		h.wg.Add(1)
		go h.worker(i)
	}
	h.logger.Info("event workers started",
		slog.Int("worker_count", cfg.WorkerCount),
		slog.Int("queue_size", cfg.QueueSize))
	return h
}

// HandleEvent enqueues event without waiting for delivery.
func (h *AsyncHandler) HandleEvent(_ context.Context, event *Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return ErrQueueClosed
	}

	select {
	case h.queue <- event:
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(h.queue))
	}
}

// Stop rejects new events, delivers those already queued and waits for the
// workers to exit.
func (h *AsyncHandler) Stop() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.queue)
	h.mu.Unlock()

	h.wg.Wait()
	h.logger.Info("event workers stopped")
}

func (h *AsyncHandler) worker(id int) {
	defer h.wg.Done()
	for event := range h.queue {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		if err := h.next.HandleEvent(ctx, event); err != nil {
			h.logger.Error("event delivery failed",
				slog.Int("worker_id", id),
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.Type),
				slog.String("error", err.Error()))
		}
		cancel()
	}
}
