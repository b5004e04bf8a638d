package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"southern-night/internal/logger"
	"southern-night/internal/messaging"
	"southern-night/internal/models"
)

func quietLogger() *logger.Logger {
	return logger.NewWithWriter("test", io.Discard)
}

func orderNotification() models.Notification {
	return models.NewOrderConfirmedNotification(&models.OrderConfirmation{
		OrderNumber: "ORD_20261018_001",
		Total:       1180,
		Lines:       make([]models.CartLine, 2),
		Request:     models.OrderRequest{Name: "Nina", Phone: "+7 999 123-45-67", Address: "Lenina 1", Comment: "ring twice"},
		SubmittedAt: time.Date(2026, 10, 18, 19, 30, 0, 0, time.UTC),
	})
}

func TestFanout_ContinuesPastFailures(t *testing.T) {
	var calls []string
	failing := SinkFunc(func(ctx context.Context, n models.Notification) error {
		calls = append(calls, "failing")
		return errors.New("broker down")
	})
	ok := SinkFunc(func(ctx context.Context, n models.Notification) error {
		calls = append(calls, "ok")
		return nil
	})

	err := Fanout{failing, ok, NewLogSink(quietLogger())}.Notify(context.Background(), models.NewCartEmptyNotification())
	if err == nil || !strings.Contains(err.Error(), "broker down") {
		t.Errorf("Notify() error = %v, want broker down", err)
	}
	if len(calls) != 2 || calls[1] != "ok" {
		t.Errorf("calls = %v, want both sinks called", calls)
	}
}

type fakePublisher struct {
	got []models.Notification
	err error
}

func (p *fakePublisher) PublishNotification(ctx context.Context, msg models.Notification) error {
	p.got = append(p.got, msg)
	return p.err
}

func TestPublisherSink(t *testing.T) {
	p := &fakePublisher{}
	n := models.NewItemAddedNotification("Baklava")
	if err := NewPublisherSink(p).Notify(context.Background(), n); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if len(p.got) != 1 || p.got[0].Message != "Baklava" {
		t.Errorf("published %v", p.got)
	}

	p.err = errors.New("channel closed")
	err := NewPublisherSink(p).Notify(context.Background(), n)
	if err == nil || !errors.Is(err, p.err) {
		t.Errorf("Notify() error = %v, want channel closed", err)
	}
}

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c)
	return tgbotapi.Message{}, nil
}

func TestTelegramSink_ForwardsConfirmationsOnly(t *testing.T) {
	sender := &fakeSender{}
	sink := NewTelegramSinkWithSender(sender, -100)
	ctx := context.Background()

	_ = sink.Notify(ctx, models.NewItemAddedNotification("Ayran"))
	_ = sink.Notify(ctx, models.NewCartEmptyNotification())
	if len(sender.sent) != 0 {
		t.Fatalf("sent %d messages for customer-only events, want 0", len(sender.sent))
	}

	if err := sink.Notify(ctx, orderNotification()); err != nil {
		t.Fatalf("Notify(order) error = %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	if !ok {
		t.Fatalf("sent %T, want MessageConfig", sender.sent[0])
	}
	if msg.ChatID != -100 {
		t.Errorf("ChatID = %d, want -100", msg.ChatID)
	}
	for _, want := range []string{"ORD_20261018_001", "1180 ₽", "Lenina 1", "ring twice"} {
		if !strings.Contains(msg.Text, want) {
			t.Errorf("message %q does not contain %q", msg.Text, want)
		}
	}
}

func TestFormatStaffMessage_Booking(t *testing.T) {
	n := models.NewBookingConfirmedNotification(&models.BookingConfirmation{
		Request: models.BookingRequest{Name: "Oleg", Phone: "+79990000000", Date: "2026-10-20", Time: "19:00", Guests: 4},
	})
	text, ok := FormatStaffMessage(n)
	if !ok {
		t.Fatalf("FormatStaffMessage(booking) ok = false")
	}
	for _, want := range []string{"2026-10-20", "19:00", "guests: 4", "Oleg"} {
		if !strings.Contains(text, want) {
			t.Errorf("text %q does not contain %q", text, want)
		}
	}
}

func TestSubscriber_HandleNotification(t *testing.T) {
	var out bytes.Buffer
	s := NewSubscriber(nil, quietLogger())
	s.out = &out

	body, _ := json.Marshal(orderNotification())
	if err := s.handleNotification(context.Background(), body); err != nil {
		t.Fatalf("handleNotification() error = %v", err)
	}
	if !strings.Contains(out.String(), "Order ORD_20261018_001 confirmed, total 1180 ₽") {
		t.Errorf("output = %q", out.String())
	}

	err := s.handleNotification(context.Background(), []byte("{not json"))
	if !errors.Is(err, messaging.ErrPoisonMessage) {
		t.Errorf("handleNotification(garbage) error = %v, want ErrPoisonMessage", err)
	}
}

func TestFormatNotification(t *testing.T) {
	tests := []struct {
		n    models.Notification
		want string
	}{
		{models.NewItemAddedNotification("Dolma"), "Added to cart: Dolma"},
		{models.NewCartEmptyNotification(), "Cart is empty. Add dishes to your cart"},
		{models.Notification{Title: "Other", Message: "text"}, "Other: text"},
	}
	for _, tt := range tests {
		if got := formatNotification(&tt.n); !strings.Contains(got, tt.want) {
			t.Errorf("formatNotification(%s) = %q, want it to contain %q", tt.n.Kind, got, tt.want)
		}
	}
}

type fakeSource struct {
	bodies [][]byte
	closed bool
}

func (f *fakeSource) StartConsuming(ctx context.Context, handler messaging.MessageHandler) error {
	for _, b := range f.bodies {
		if err := handler(ctx, b); err != nil {
			return err
		}
	}
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func TestSubscriber_StartStopsOnCancel(t *testing.T) {
	body, _ := json.Marshal(models.NewItemAddedNotification("Churchkhela"))
	src := &fakeSource{bodies: [][]byte{body}}

	var out bytes.Buffer
	s := NewSubscriber(src, quietLogger())
	s.out = &out

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Errorf("Start() error = %v, want nil on shutdown", err)
	}
	if !src.closed {
		t.Errorf("source not closed on shutdown")
	}
	if !strings.Contains(out.String(), "Churchkhela") {
		t.Errorf("output = %q", out.String())
	}
}

func TestSessionTagger(t *testing.T) {
	var got models.Notification
	next := SinkFunc(func(ctx context.Context, n models.Notification) error {
		got = n
		return nil
	})
	tagger := SessionTagger{Next: next}

	ctx := WithSessionID(context.Background(), "sess-1")
	if err := tagger.Notify(ctx, models.NewItemAddedNotification("Tea")); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	if got.SessionID != "sess-1" {
		t.Errorf("SessionID = %q, want sess-1", got.SessionID)
	}

	_ = tagger.Notify(context.Background(), models.NewItemAddedNotification("Tea"))
	if got.SessionID != "" {
		t.Errorf("SessionID = %q, want empty without session", got.SessionID)
	}
}

func TestQueue_NotifyDoesNotWaitForSink(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var mu sync.Mutex
	var delivered []string
	slow := SinkFunc(func(ctx context.Context, n models.Notification) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
		mu.Lock()
		delivered = append(delivered, n.Message)
		mu.Unlock()
		return nil
	})

	q := NewQueue(slow, 1, quietLogger())

	start := time.Now()
	if err := q.Notify(context.Background(), models.NewItemAddedNotification("Dolma")); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	<-started
	if err := q.Notify(context.Background(), models.NewItemAddedNotification("Ayran")); err != nil {
		t.Fatalf("Notify() with free slot error = %v", err)
	}
	err := q.Notify(context.Background(), models.NewItemAddedNotification("Tea"))
	if !errors.Is(err, ErrQueueFull) {
		t.Errorf("Notify() on full queue error = %v, want ErrQueueFull", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Notify() blocked for %v", elapsed)
	}

	close(release)
	q.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(delivered) != 2 || delivered[0] != "Dolma" || delivered[1] != "Ayran" {
		t.Errorf("delivered = %v, want [Dolma Ayran]", delivered)
	}
}

func TestQueue_KeepsContextValuesAfterCancel(t *testing.T) {
	got := make(chan string, 1)
	sink := SinkFunc(func(ctx context.Context, n models.Notification) error {
		if ctx.Err() != nil {
			got <- "cancelled"
			return ctx.Err()
		}
		got <- logger.RequestIDFromContext(ctx)
		return nil
	})
	q := NewQueue(sink, 4, quietLogger())
	defer q.Close()

	ctx, cancel := context.WithCancel(logger.WithRequestID(context.Background(), "req-1"))
	if err := q.Notify(ctx, models.NewCartEmptyNotification()); err != nil {
		t.Fatalf("Notify() error = %v", err)
	}
	cancel()

	select {
	case id := <-got:
		if id != "req-1" {
			t.Errorf("delivered with %q, want request id req-1", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("notification not delivered")
	}
}
