package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"southern-night/internal/logger"
	"southern-night/internal/models"
)

// ErrQueueFull is returned by Queue.Notify when the buffer has no room
var ErrQueueFull = errors.New("notification queue full")

const deliveryTimeout = 15 * time.Second

type queued struct {
	ctx context.Context
	n   models.Notification
}

// Queue hands notifications to a background worker that delivers them to
// next. Notify never waits on next; when the buffer is full the
// notification is dropped with ErrQueueFull.
type Queue struct {
	next   Sink
	logger *logger.Logger
	items  chan queued
	done   chan struct{}
	once   sync.Once
}

// NewQueue starts a worker delivering to next with room for size
// pending notifications
func NewQueue(next Sink, size int, log *logger.Logger) *Queue {
	q := &Queue{
		next:   next,
		logger: log,
		items:  make(chan queued, size),
		done:   make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *Queue) Notify(ctx context.Context, n models.Notification) error {
	select {
	case q.items <- queued{ctx: context.WithoutCancel(ctx), n: n}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for item := range q.items {
		ctx, cancel := context.WithTimeout(item.ctx, deliveryTimeout)
		if err := q.next.Notify(ctx, item.n); err != nil {
			q.logger.Error("notification_failed", "Failed to deliver queued notification", logger.RequestIDFromContext(ctx), err, map[string]interface{}{
				"kind":       item.n.Kind,
				"session_id": item.n.SessionID,
			})
		}
		cancel()
	}
}

// Close stops accepting notifications and waits until the pending ones
// are delivered. Notify must not be called after Close.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.items) })
	<-q.done
}
