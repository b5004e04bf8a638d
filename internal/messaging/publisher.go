package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"southern-night/internal/logger"
	"southern-night/internal/models"
)

const publishTimeout = 10 * time.Second

// Publisher puts site notifications on the notifications fanout exchange
type Publisher struct {
	conn   *Connection
	logger *logger.Logger
}

func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: log,
	}
}

// PublishNotification sends n as JSON. Notifications are transient: they
// expire with the queue TTL and are not worth surviving a broker restart.
func (p *Publisher) PublishNotification(ctx context.Context, n models.Notification) error {
	requestID := logger.RequestIDFromContext(ctx)

	if p.conn.IsClosed() {
		if err := p.conn.Reconnect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal %s notification: %w", n.Kind, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.conn.Channel().PublishWithContext(ctx, NotificationsExchange, "", false, false, amqp091.Publishing{
		ContentType:  "application/json",
		Type:         string(n.Kind),
		Body:         body,
		DeliveryMode: amqp091.Transient,
		Timestamp:    n.Timestamp,
	})
	if err != nil {
		p.logger.Error("notification_publish_failed", "Failed to publish notification", requestID, err, map[string]interface{}{
			"kind":       n.Kind,
			"session_id": n.SessionID,
		})
		return fmt.Errorf("failed to publish %s notification: %w", n.Kind, err)
	}

	p.logger.Debug("notification_published", "Published notification", requestID, map[string]interface{}{
		"kind":         n.Kind,
		"session_id":   n.SessionID,
		"message_size": len(body),
	})
	return nil
}
