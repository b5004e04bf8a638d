package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"southern-night/internal/logger"
	"southern-night/internal/messaging"
	"southern-night/internal/models"
)

// MessageSource delivers raw notification bodies to a handler
type MessageSource interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// Subscriber prints notifications published by the site service
type Subscriber struct {
	source MessageSource
	logger *logger.Logger
	out    io.Writer
}

// NewSubscriber creates a new notification subscriber
func NewSubscriber(source MessageSource, log *logger.Logger) *Subscriber {
	return &Subscriber{
		source: source,
		logger: log,
		out:    os.Stdout,
	}
}

// Start consumes notifications until ctx is cancelled
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.source.StartConsuming(ctx, s.handleNotification)

	s.logger.Info("graceful_shutdown", "Stopping notification subscriber", requestID, nil)
	if closeErr := s.source.Close(); closeErr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", requestID, closeErr, nil)
	}

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("notification consumer failed: %w", err)
	}
	return nil
}

// handleNotification decodes and displays one notification
func (s *Subscriber) handleNotification(ctx context.Context, body []byte) error {
	requestID := logger.GenerateRequestID()

	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return fmt.Errorf("%w: failed to parse notification: %v", messaging.ErrPoisonMessage, err)
	}

	fmt.Fprintln(s.out, formatNotification(&n))

	s.logger.Info("notification_displayed", "Notification displayed", requestID, map[string]interface{}{
		"kind":       n.Kind,
		"session_id": n.SessionID,
		"timestamp":  n.Timestamp.Format("2006-01-02 15:04:05"),
	})
	return nil
}

// formatNotification creates a human-readable notification line
func formatNotification(n *models.Notification) string {
	timestamp := n.Timestamp.Format("2006-01-02 15:04:05")

	switch n.Kind {
	case models.KindItemAdded:
		return fmt.Sprintf("🛒 [%s] %s: %s", timestamp, n.Title, n.Message)
	case models.KindOrderConfirmed:
		return fmt.Sprintf("✅ [%s] Order %s confirmed, total %d ₽. %s",
			timestamp, n.Details["order_number"], n.Total, n.Message)
	case models.KindBookingConfirmed:
		return fmt.Sprintf("🍽 [%s] Booking for %s on %s at %s, %s guests.",
			timestamp, n.Details["name"], n.Details["date"], n.Details["time"], n.Details["guests"])
	case models.KindCartEmpty:
		return fmt.Sprintf("❌ [%s] %s. %s", timestamp, n.Title, n.Message)
	default:
		return fmt.Sprintf("📋 [%s] %s: %s", timestamp, n.Title, n.Message)
	}
}
