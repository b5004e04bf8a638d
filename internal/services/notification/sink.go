package notification

import (
	"context"
	"errors"

	"southern-night/internal/logger"
	"southern-night/internal/models"
)

// Sink accepts notifications for presentation somewhere outside the core
type Sink interface {
	Notify(ctx context.Context, n models.Notification) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(ctx context.Context, n models.Notification) error

func (f SinkFunc) Notify(ctx context.Context, n models.Notification) error {
	return f(ctx, n)
}

// Fanout delivers every notification to all sinks, continuing past failures
type Fanout []Sink

func (f Fanout) Notify(ctx context.Context, n models.Notification) error {
	var errs []error
	for _, s := range f {
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes notifications to the structured log
type LogSink struct {
	logger *logger.Logger
}

// NewLogSink creates a sink that logs each notification
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

func (s *LogSink) Notify(ctx context.Context, n models.Notification) error {
	fields := map[string]interface{}{
		"kind":     n.Kind,
		"title":    n.Title,
		"severity": n.Severity,
	}
	if n.SessionID != "" {
		fields["session_id"] = n.SessionID
	}
	if n.Total != 0 {
		fields["total"] = n.Total
	}
	s.logger.Info("notification_emitted", n.Message, logger.RequestIDFromContext(ctx), fields)
	return nil
}

// Publisher is the broker side of PublisherSink
type Publisher interface {
	PublishNotification(ctx context.Context, n models.Notification) error
}

// PublisherSink forwards notifications to the notifications exchange
type PublisherSink struct {
	publisher Publisher
}

// NewPublisherSink creates a sink backed by a message publisher
func NewPublisherSink(p Publisher) *PublisherSink {
	return &PublisherSink{publisher: p}
}

func (s *PublisherSink) Notify(ctx context.Context, n models.Notification) error {
	return s.publisher.PublishNotification(ctx, n)
}

type sessionIDKey struct{}

// WithSessionID marks notifications emitted under ctx as belonging to a session
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, id)
}

// SessionTagger fills Notification.SessionID from the context before
// passing the notification on
type SessionTagger struct {
	Next Sink
}

func (t SessionTagger) Notify(ctx context.Context, n models.Notification) error {
	if id, ok := ctx.Value(sessionIDKey{}).(string); ok && n.SessionID == "" {
		n.SessionID = id
	}
	return t.Next.Notify(ctx, n)
}
