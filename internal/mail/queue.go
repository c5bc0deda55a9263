package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gryp17/Tablaturi-bg-API/internal/redact"
)

// Common errors returned by Queue.Send.
var (
	ErrQueueClosed = errors.New("mail queue is closed")
	ErrQueueFull   = errors.New("mail queue is full")
)

// QueueConfig sizes a Queue.
type QueueConfig struct {
	// Size is the number of messages that may wait for delivery.
	Size int
	// Workers is the number of concurrent senders. Defaults to 1.
	Workers int
	// SendTimeout bounds one delivery attempt.
	SendTimeout time.Duration
}

// DefaultQueueConfig returns a QueueConfig with reasonable defaults.
func DefaultQueueConfig() QueueConfig {
	return QueueConfig{Size: 100, Workers: 2, SendTimeout: 30 * time.Second}
}

// Queue is a Mailer that hands messages to background workers and returns
// at once. It suits notifications whose delivery must not hold up a
// request; failures are logged, never reported to the sender.
type Queue struct {
	next    Mailer
	msgs    chan Message
	workers int
	timeout time.Duration
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ Mailer = (*Queue)(nil)

// NewQueue creates a Queue delivering through next. Call Start to begin
// delivery and Stop to drain it.
func NewQueue(next Mailer, cfg QueueConfig, log *slog.Logger) *Queue {
	if next == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("mailer cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "mail_queue"))

	workers := cfg.Workers
	if workers <= 0 {
		log.Warn("invalid worker count specified, using default",
			slog.Int("specified_count", cfg.Workers),
			slog.Int("default_count", 1))
		workers = 1
	}
	size := cfg.Size
	if size < 0 {
		size = 0
	}

	return &Queue{
		next:    next,
		msgs:    make(chan Message, size),
		workers: workers,
		timeout: cfg.SendTimeout,
		logger:  log,
	}
}

// Start launches the delivery workers.
func (q *Queue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Info("mail queue started", slog.Int("workers", q.workers))
}

// Send implements Mailer by enqueueing msg. It fails only when the queue is
// full or stopped.
func (q *Queue) Send(ctx context.Context, msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.msgs <- msg:
		return nil
	default:
		return fmt.Errorf("%w: capacity %d reached", ErrQueueFull, cap(q.msgs))
	}
}

// Stop refuses new messages and waits for the queued ones to be delivered.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.msgs)
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("mail queue stopped")
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	log := q.logger.With(slog.Int("worker_id", id))

	for msg := range q.msgs {
		q.deliver(log, msg)
	}
}

func (q *Queue) deliver(log *slog.Logger, msg Message) {
	ctx := context.Background()
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	if err := q.next.Send(ctx, msg); err != nil {
		log.Warn("queued mail not delivered",
			slog.String("subject", msg.Subject),
			slog.String("error", redact.Error(err)))
	}
}
