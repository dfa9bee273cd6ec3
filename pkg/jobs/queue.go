package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by Enqueue when the buffer has no room.
	ErrQueueFull = errors.New("queue full")
	// ErrQueueStopped is returned by Enqueue before Start or after Stop.
	ErrQueueStopped = errors.New("queue not running")
)

// Handler processes one item.
type Handler[T any] func(context.Context, T) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	// DrainTimeout bounds how long Stop keeps processing buffered items.
	DrainTimeout time.Duration
	Logger       *zap.Logger
}

// Queue is an in-memory worker pool. Enqueue never blocks; a failed item is
// logged and dropped.
type Queue[T any] struct {
	name    string
	handler Handler[T]

	workers      int
	drainTimeout time.Duration
	logger       *zap.Logger

	items   chan T
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	running bool
}

// NewQueue builds a queue with the provided handler.
func NewQueue[T any](name string, handler Handler[T], cfg QueueConfig) *Queue[T] {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 64
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Queue[T]{
		name:         name,
		handler:      handler,
		workers:      cfg.Workers,
		drainTimeout: cfg.DrainTimeout,
		logger:       cfg.Logger,
		items:        make(chan T, cfg.BufferSize),
	}
}

// Start begins worker consumption. Calling it twice is a no-op.
func (q *Queue[T]) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	q.running = true
	q.logger.Info("queue started", zap.String("queue", q.name), zap.Int("workers", q.workers))
}

// Stop refuses new items, processes what is buffered for up to the drain
// timeout, then waits for workers to exit.
func (q *Queue[T]) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	close(q.items)
	q.mu.Unlock()

	timer := time.AfterFunc(q.drainTimeout, q.cancel)
	q.wg.Wait()
	timer.Stop()
	q.cancel()
	q.logger.Info("queue stopped", zap.String("queue", q.name))
}

// Enqueue hands item to the workers without blocking.
func (q *Queue[T]) Enqueue(item T) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if !q.running {
		return ErrQueueStopped
	}
	select {
	case q.items <- item:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue[T]) worker() {
	defer q.wg.Done()
	for item := range q.items {
		if q.ctx.Err() != nil {
			q.logger.Warn("queue drain timed out, dropping item", zap.String("queue", q.name))
			continue
		}
		if err := q.handler(q.ctx, item); err != nil {
			q.logger.Error("queue item failed", zap.String("queue", q.name), zap.Error(err))
		}
	}
}
