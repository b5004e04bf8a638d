// Package session owns the per-visitor state of the site: one cart, one
// delivery order draft and one booking draft. Every operation on a
// Session runs under its mutex, so concurrent requests for the same
// visitor are applied one after another. Sinks handed to a session must
// return promptly; slow delivery belongs behind notification.Queue.
package session

import (
	"context"
	"fmt"
	"sync"

	"southern-night/internal/cart"
	"southern-night/internal/catalog"
	"southern-night/internal/logger"
	"southern-night/internal/models"
	"southern-night/internal/services/booking"
	"southern-night/internal/services/notification"
	"southern-night/internal/services/order"
)

// Services bundles the collaborators every session shares
type Services struct {
	Catalog  *catalog.Catalog
	Sink     notification.Sink
	Orders   *order.Service
	Bookings *booking.Service
	Logger   *logger.Logger
}

type Session struct {
	ID string

	mu          sync.Mutex
	cart        *cart.Cart
	orderForm   models.OrderRequest
	bookingForm models.BookingRequest
	svc         *Services
}

// CartView is a read-only snapshot of a cart
type CartView struct {
	Lines []LineView `json:"lines"`
	Total int64      `json:"total"`
	Count int        `json:"count"`
}

type LineView struct {
	models.CartLine
	Subtotal int64 `json:"subtotal"`
}

// Forms is a snapshot of both drafts
type Forms struct {
	Order   models.OrderRequest   `json:"order"`
	Booking models.BookingRequest `json:"booking"`
}

func newSession(id string, svc *Services) *Session {
	return &Session{
		ID:   id,
		cart: cart.New(),
		svc:  svc,
	}
}

// AddItem puts one unit of the menu entry into the cart and announces it.
// The announcement is sent after the session is unlocked, so a slow sink
// never holds up other requests of the same visitor.
func (s *Session) AddItem(ctx context.Context, id string) (CartView, error) {
	entry, err := s.svc.Catalog.Lookup(id)
	if err != nil {
		return CartView{}, fmt.Errorf("failed to add item: %w", err)
	}

	s.mu.Lock()
	quantity := s.cart.Add(entry)
	view := s.view()
	s.mu.Unlock()

	requestID := logger.RequestIDFromContext(ctx)
	ctx = notification.WithSessionID(ctx, s.ID)
	if err := s.svc.Sink.Notify(ctx, models.NewItemAddedNotification(entry.Name)); err != nil {
		s.svc.Logger.Error("notification_failed", "Failed to deliver notification", requestID, err, map[string]interface{}{
			"kind":       models.KindItemAdded,
			"session_id": s.ID,
		})
	}

	s.svc.Logger.Debug("item_added", "Item added to cart", requestID, map[string]interface{}{
		"session_id": s.ID,
		"item_id":    entry.ID,
		"quantity":   quantity,
	})

	return view, nil
}

// RemoveItem drops the line for id. Unknown ids are ignored.
func (s *Session) RemoveItem(id string) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(id)
	return s.view()
}

// AdjustQuantity changes the quantity of a line by delta
func (s *Session) AdjustQuantity(id string, delta int) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Adjust(id, delta)
	return s.view()
}

func (s *Session) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view()
}

func (s *Session) view() CartView {
	lines := s.cart.Lines()
	out := CartView{
		Lines: make([]LineView, len(lines)),
		Total: s.cart.Total(),
		Count: len(lines),
	}
	for i, l := range lines {
		out.Lines[i] = LineView{CartLine: l, Subtotal: l.Subtotal()}
	}
	return out
}

func (s *Session) SaveOrderForm(req models.OrderRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orderForm = req
}

func (s *Session) SaveBookingForm(req models.BookingRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookingForm = req
}

func (s *Session) Forms() Forms {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Forms{Order: s.orderForm, Booking: s.bookingForm}
}

// SubmitOrder stores req as the order draft and submits it together with
// the cart. On rejection the draft and the cart stay as they were.
func (s *Session) SubmitOrder(ctx context.Context, req models.OrderRequest) (*models.OrderConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orderForm = req
	return s.svc.Orders.Submit(notification.WithSessionID(ctx, s.ID), s.cart, &s.orderForm)
}

// SubmitBooking stores req as the booking draft and submits it
func (s *Session) SubmitBooking(ctx context.Context, req models.BookingRequest) *models.BookingConfirmation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookingForm = req
	return s.svc.Bookings.Submit(notification.WithSessionID(ctx, s.ID), &s.bookingForm)
}
