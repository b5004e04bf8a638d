package booking

import (
	"context"
	"time"

	"southern-night/internal/logger"
	"southern-night/internal/models"
	"southern-night/internal/services/notification"
)

// Service accepts table booking requests. It keeps no state between
// submissions and never touches a cart.
type Service struct {
	sink   notification.Sink
	logger *logger.Logger
}

// NewService creates a new booking intake service
func NewService(sink notification.Sink, log *logger.Logger) *Service {
	return &Service{
		sink:   sink,
		logger: log,
	}
}

// Submit confirms details and resets the form. Field checks happen before
// this call, so it always succeeds.
func (s *Service) Submit(ctx context.Context, details *models.BookingRequest) *models.BookingConfirmation {
	requestID := logger.RequestIDFromContext(ctx)

	confirmation := &models.BookingConfirmation{
		Request:     *details,
		SubmittedAt: time.Now().UTC(),
	}

	n := models.NewBookingConfirmedNotification(confirmation)
	if err := s.sink.Notify(ctx, n); err != nil {
		s.logger.Error("notification_failed", "Failed to deliver notification", requestID, err, map[string]interface{}{
			"kind": n.Kind,
		})
	}

	*details = models.BookingRequest{}

	s.logger.Info("booking_submitted", "Booking request submitted", requestID, map[string]interface{}{
		"date":   confirmation.Request.Date,
		"time":   confirmation.Request.Time,
		"guests": confirmation.Request.Guests,
	})

	return confirmation
}
