package models

import (
	"fmt"
	"time"
)

// Severity controls how a notification is presented
type Severity string

const (
	SeverityNormal      Severity = "normal"
	SeverityDestructive Severity = "destructive"
)

// NotificationKind identifies the event behind a notification
type NotificationKind string

const (
	KindItemAdded        NotificationKind = "item_added"
	KindOrderConfirmed   NotificationKind = "order_confirmed"
	KindBookingConfirmed NotificationKind = "booking_confirmed"
	KindCartEmpty        NotificationKind = "cart_empty"
)

// Notification is the message handed to a notification sink
type Notification struct {
	Kind      NotificationKind  `json:"kind"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Severity  Severity          `json:"severity"`
	Total     int64             `json:"total,omitempty"`
	SessionID string            `json:"session_id,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// NewItemAddedNotification announces that a dish went into the cart
func NewItemAddedNotification(entryName string) Notification {
	return Notification{
		Kind:      KindItemAdded,
		Title:     "Added to cart",
		Message:   entryName,
		Severity:  SeverityNormal,
		Timestamp: time.Now().UTC(),
	}
}

// NewCartEmptyNotification rejects an order placed with nothing in the cart
func NewCartEmptyNotification() Notification {
	return Notification{
		Kind:      KindCartEmpty,
		Title:     "Cart is empty",
		Message:   "Add dishes to your cart",
		Severity:  SeverityDestructive,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderConfirmedNotification confirms an order with the total fixed at submit time
func NewOrderConfirmedNotification(c *OrderConfirmation) Notification {
	return Notification{
		Kind:     KindOrderConfirmed,
		Title:    "Order placed!",
		Message:  fmt.Sprintf("Total: %d ₽. Expect our call", c.Total),
		Severity: SeverityNormal,
		Total:    c.Total,
		Details: map[string]string{
			"order_number": c.OrderNumber,
			"name":         c.Request.Name,
			"phone":        c.Request.Phone,
			"address":      c.Request.Address,
			"comment":      c.Request.Comment,
			"lines":        fmt.Sprintf("%d", len(c.Lines)),
		},
		Timestamp: c.SubmittedAt,
	}
}

// NewBookingConfirmedNotification confirms a table request
func NewBookingConfirmedNotification(c *BookingConfirmation) Notification {
	return Notification{
		Kind:     KindBookingConfirmed,
		Title:    "Booking sent!",
		Message:  "We will contact you shortly",
		Severity: SeverityNormal,
		Details: map[string]string{
			"name":   c.Request.Name,
			"phone":  c.Request.Phone,
			"date":   c.Request.Date,
			"time":   c.Request.Time,
			"guests": fmt.Sprintf("%d", c.Request.Guests),
		},
		Timestamp: c.SubmittedAt,
	}
}
