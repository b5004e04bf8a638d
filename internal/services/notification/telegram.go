package notification

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"southern-night/internal/models"
)

// MessageSender is the part of *tgbotapi.BotAPI the sink uses
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink forwards confirmed orders and bookings to the staff chat.
// Cart events and rejections are customer-facing only and are skipped.
type TelegramSink struct {
	sender MessageSender
	chatID int64
}

// NewTelegramSink connects to the Bot API with token
func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return NewTelegramSinkWithSender(api, chatID), nil
}

// NewTelegramSinkWithSender builds a sink around an existing sender
func NewTelegramSinkWithSender(sender MessageSender, chatID int64) *TelegramSink {
	return &TelegramSink{sender: sender, chatID: chatID}
}

func (s *TelegramSink) Notify(ctx context.Context, n models.Notification) error {
	text, ok := FormatStaffMessage(n)
	if !ok {
		return nil
	}

	msg := tgbotapi.NewMessage(s.chatID, text)
	if _, err := s.sender.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// FormatStaffMessage renders a notification for restaurant staff. It
// reports false for kinds staff do not need to see.
func FormatStaffMessage(n models.Notification) (string, bool) {
	var b strings.Builder

	switch n.Kind {
	case models.KindOrderConfirmed:
		fmt.Fprintf(&b, "🛵 New delivery order %s\n", n.Details["order_number"])
		fmt.Fprintf(&b, "Total: %d ₽ (%s lines)\n", n.Total, n.Details["lines"])
		fmt.Fprintf(&b, "Name: %s\nPhone: %s\nAddress: %s", n.Details["name"], n.Details["phone"], n.Details["address"])
		if c := n.Details["comment"]; c != "" {
			fmt.Fprintf(&b, "\nComment: %s", c)
		}
	case models.KindBookingConfirmed:
		fmt.Fprintf(&b, "🍽 New table booking\n")
		fmt.Fprintf(&b, "%s at %s, guests: %s\n", n.Details["date"], n.Details["time"], n.Details["guests"])
		fmt.Fprintf(&b, "Name: %s\nPhone: %s", n.Details["name"], n.Details["phone"])
	default:
		return "", false
	}

	return b.String(), true
}
