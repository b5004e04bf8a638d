package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"southern-night/internal/logger"
)

// ErrPoisonMessage marks a message that can never be processed. Handlers
// wrap it so the consumer drops the delivery instead of requeueing it.
var ErrPoisonMessage = errors.New("poison message")

// MessageHandler processes one delivery body
type MessageHandler func(ctx context.Context, body []byte) error

// Consumer handles message consumption from RabbitMQ
type Consumer struct {
	conn        *Connection
	logger      *logger.Logger
	queueName   string
	consumerTag string
	prefetch    int
}

// NewConsumer creates a new message consumer
func NewConsumer(conn *Connection, log *logger.Logger, queueName, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		logger:      log,
		queueName:   queueName,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// StartConsuming consumes until ctx is cancelled, reconnecting when the
// broker closes the delivery channel.
func (c *Consumer) StartConsuming(ctx context.Context, handler MessageHandler) error {
	for {
		msgs, err := c.subscribe()
		if err != nil {
			return err
		}

		c.logger.Info("consumer_started",
			fmt.Sprintf("Started consuming from queue %s", c.queueName),
			"", map[string]interface{}{
				"queue":    c.queueName,
				"consumer": c.consumerTag,
				"prefetch": c.prefetch,
			})

		if done := c.drain(ctx, msgs, handler); done {
			c.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return ctx.Err()
		}

		c.logger.Error("consumer_channel_closed", "Message channel closed, attempting to reconnect", "", nil, nil)
		if err := c.conn.Reconnect(); err != nil {
			return fmt.Errorf("failed to reconnect after channel closed: %w", err)
		}
	}
}

func (c *Consumer) subscribe() (<-chan amqp091.Delivery, error) {
	if c.conn.IsClosed() {
		if err := c.conn.Reconnect(); err != nil {
			return nil, fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	ch := c.conn.Channel()
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName,   // queue
		c.consumerTag, // consumer
		false,         // auto-ack (we'll ack manually)
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}
	return msgs, nil
}

// drain processes deliveries until ctx is done (true) or msgs closes (false)
func (c *Consumer) drain(ctx context.Context, msgs <-chan amqp091.Delivery, handler MessageHandler) bool {
	for {
		select {
		case <-ctx.Done():
			return true
		case d, ok := <-msgs:
			if !ok {
				return false
			}
			c.processMessage(ctx, d, handler)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, delivery amqp091.Delivery, handler MessageHandler) {
	startTime := time.Now()

	processingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	err := handler(processingCtx, delivery.Body)
	fields := map[string]interface{}{
		"queue":        c.queueName,
		"duration_ms":  time.Since(startTime).Milliseconds(),
		"delivery_tag": delivery.DeliveryTag,
	}

	switch {
	case err == nil:
		c.logger.Debug("message_processed", "Successfully processed message", "", fields)
		if ackErr := delivery.Ack(false); ackErr != nil {
			c.logger.Error("message_ack_failed", "Failed to ack message", "", ackErr, nil)
		}
	case errors.Is(err, ErrPoisonMessage):
		c.logger.Error("message_dropped", "Dropping unprocessable message", "", err, fields)
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			c.logger.Error("message_nack_failed", "Failed to nack message", "", nackErr, nil)
		}
	default:
		c.logger.Error("message_processing_failed", "Failed to process message", "", err, fields)
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			c.logger.Error("message_nack_failed", "Failed to nack message", "", nackErr, nil)
		}
	}
}

// Close cancels the consumer and closes the connection
func (c *Consumer) Close() error {
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Channel().Cancel(c.consumerTag, false); err != nil {
			c.logger.Error("consumer_cancel_failed", "Failed to cancel consumer", "", err, nil)
		}
		return c.conn.Close()
	}
	return nil
}
