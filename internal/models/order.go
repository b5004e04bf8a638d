package models

import (
	"fmt"
	"time"
)

// CartLine is a menu entry together with the selected quantity.
// Quantity is always at least 1 while the line is in a cart.
type CartLine struct {
	MenuEntry
	Quantity int `json:"quantity"`
}

// Subtotal returns price times quantity for the line
func (l CartLine) Subtotal() int64 {
	return l.Price * int64(l.Quantity)
}

// OrderRequest is the delivery checkout form
type OrderRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Phone   string `json:"phone" validate:"required,phone"`
	Address string `json:"address" validate:"required,max=300"`
	Comment string `json:"comment,omitempty" validate:"max=500"`
}

// IsZero reports whether the form is in its reset state
func (r OrderRequest) IsZero() bool {
	return r == OrderRequest{}
}

// BookingRequest is the table reservation form
type BookingRequest struct {
	Name   string `json:"name" validate:"required,max=100"`
	Phone  string `json:"phone" validate:"required,phone"`
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Time   string `json:"time" validate:"required,datetime=15:04"`
	Guests int    `json:"guests" validate:"required,min=1,max=50"`
}

// IsZero reports whether the form is in its reset state
func (r BookingRequest) IsZero() bool {
	return r == BookingRequest{}
}

// OrderConfirmation describes a submitted order
type OrderConfirmation struct {
	OrderNumber string       `json:"order_number"`
	Total       int64        `json:"total"`
	Lines       []CartLine   `json:"lines"`
	Request     OrderRequest `json:"request"`
	SubmittedAt time.Time    `json:"submitted_at"`
}

// BookingConfirmation describes a submitted booking request
type BookingConfirmation struct {
	Request     BookingRequest `json:"request"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// GenerateOrderNumber generates an order number in format ORD_YYYYMMDD_NNN
func GenerateOrderNumber(date time.Time, sequence int) string {
	dateStr := date.Format("20060102")
	return fmt.Sprintf("ORD_%s_%03d", dateStr, sequence)
}
