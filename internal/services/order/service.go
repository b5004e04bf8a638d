package order

import (
	"context"
	"sync"
	"time"

	"southern-night/internal/cart"
	"southern-night/internal/logger"
	"southern-night/internal/models"
	"southern-night/internal/services/notification"
)

// Service turns a cart into a confirmed delivery order
type Service struct {
	sink    notification.Sink
	logger  *logger.Logger
	numbers *numberSequence
}

// NewService creates a new order submission service
func NewService(sink notification.Sink, log *logger.Logger) *Service {
	return &Service{
		sink:    sink,
		logger:  log,
		numbers: &numberSequence{},
	}
}

// Submit confirms the order held in c and details.
//
// An empty cart is rejected with a ValidationError wrapping ErrEmptyCart; a
// destructive notification is emitted and neither c nor details is touched.
// Otherwise the total is fixed before anything changes, one confirmation is
// emitted, c is cleared and details is reset. The caller must own c and
// details exclusively for the duration of the call.
func (s *Service) Submit(ctx context.Context, c *cart.Cart, details *models.OrderRequest) (*models.OrderConfirmation, error) {
	requestID := logger.RequestIDFromContext(ctx)

	if c.IsEmpty() {
		s.notify(ctx, models.NewCartEmptyNotification())
		s.logger.Info("order_rejected", "Order submission rejected: cart is empty", requestID, nil)
		return nil, emptyCartError()
	}

	now := time.Now().UTC()
	confirmation := &models.OrderConfirmation{
		OrderNumber: s.numbers.next(now),
		Total:       c.Total(),
		Lines:       c.Lines(),
		Request:     *details,
		SubmittedAt: now,
	}

	s.notify(ctx, models.NewOrderConfirmedNotification(confirmation))

	c.Clear()
	*details = models.OrderRequest{}

	s.logger.Info("order_submitted", "Order submitted", requestID, map[string]interface{}{
		"order_number": confirmation.OrderNumber,
		"total_amount": confirmation.Total,
		"lines":        len(confirmation.Lines),
	})

	return confirmation, nil
}

// notify hands n to the sink. Sink failures are logged; they never undo
// or block a submission.
func (s *Service) notify(ctx context.Context, n models.Notification) {
	if err := s.sink.Notify(ctx, n); err != nil {
		s.logger.Error("notification_failed", "Failed to deliver notification", logger.RequestIDFromContext(ctx), err, map[string]interface{}{
			"kind": n.Kind,
		})
	}
}

// numberSequence hands out ORD_YYYYMMDD_NNN numbers, restarting each UTC day
type numberSequence struct {
	mu      sync.Mutex
	day     string
	counter int
}

func (n *numberSequence) next(at time.Time) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	today := at.UTC().Format("20060102")
	if today != n.day {
		n.day = today
		n.counter = 0
	}
	n.counter++
	return models.GenerateOrderNumber(at.UTC(), n.counter)
}
