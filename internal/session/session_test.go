package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"southern-night/internal/catalog"
	"southern-night/internal/logger"
	"southern-night/internal/models"
	"southern-night/internal/services/booking"
	"southern-night/internal/services/notification"
	"southern-night/internal/services/order"
)

type recordingSink struct {
	mu  sync.Mutex
	got []models.Notification
}

func (r *recordingSink) Notify(ctx context.Context, n models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, n)
	return nil
}

func (r *recordingSink) kinds() []models.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.NotificationKind, len(r.got))
	for i, n := range r.got {
		out[i] = n.Kind
	}
	return out
}

func newTestStore(t *testing.T, capacity int) (*Store, *recordingSink) {
	t.Helper()
	sink := &recordingSink{}
	log := logger.NewWithWriter("test", io.Discard)
	tagged := notification.SessionTagger{Next: sink}
	store, err := NewStore(capacity, &Services{
		Catalog:  catalog.Default(),
		Sink:     tagged,
		Orders:   order.NewService(tagged, log),
		Bookings: booking.NewService(tagged, log),
		Logger:   log,
	})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	return store, sink
}

func orderForm() models.OrderRequest {
	return models.OrderRequest{Name: "Nina", Phone: "+79991234567", Address: "Lenina 1"}
}

func TestAddItem(t *testing.T) {
	store, sink := newTestStore(t, 8)
	sess := store.Create()
	ctx := context.Background()

	if _, err := sess.AddItem(ctx, "1"); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	view, _ := sess.AddItem(ctx, "1")

	if view.Count != 1 || view.Lines[0].Quantity != 2 {
		t.Errorf("view = %+v, want one line with quantity 2", view)
	}
	if view.Lines[0].Subtotal != 900 || view.Total != 900 {
		t.Errorf("subtotal = %d, total = %d, want 900", view.Lines[0].Subtotal, view.Total)
	}
	if len(sink.got) != 2 || sink.got[0].Message != "Adjarian khachapuri" {
		t.Errorf("notifications = %+v", sink.got)
	}
	if sink.got[0].SessionID != sess.ID {
		t.Errorf("notification session = %q, want %q", sink.got[0].SessionID, sess.ID)
	}
}

func TestAddItem_UnknownEntry(t *testing.T) {
	store, sink := newTestStore(t, 8)
	sess := store.Create()

	_, err := sess.AddItem(context.Background(), "404")
	if !errors.Is(err, catalog.ErrEntryNotFound) {
		t.Errorf("AddItem() error = %v, want ErrEntryNotFound", err)
	}
	if sess.Cart().Count != 0 || len(sink.got) != 0 {
		t.Errorf("unknown entry changed state")
	}
}

func TestScenario(t *testing.T) {
	store, sink := newTestStore(t, 8)
	sess := store.Create()
	ctx := context.Background()

	sess.AddItem(ctx, "1")
	sess.AddItem(ctx, "1")
	view, _ := sess.AddItem(ctx, "5")
	if view.Total != 1180 {
		t.Fatalf("total = %d, want 1180", view.Total)
	}

	view = sess.RemoveItem("1")
	if view.Total != 280 || view.Count != 1 {
		t.Fatalf("after remove = %+v, want total 280", view)
	}

	conf, err := sess.SubmitOrder(ctx, orderForm())
	if err != nil {
		t.Fatalf("SubmitOrder() error = %v", err)
	}
	if conf.Total != 280 {
		t.Errorf("confirmation total = %d, want 280", conf.Total)
	}
	if sess.Cart().Count != 0 {
		t.Errorf("cart not cleared")
	}
	if !sess.Forms().Order.IsZero() {
		t.Errorf("order draft not reset: %+v", sess.Forms().Order)
	}

	last := sink.got[len(sink.got)-1]
	if last.Kind != models.KindOrderConfirmed || last.SessionID != sess.ID {
		t.Errorf("last notification = %+v", last)
	}
}

func TestAdjustQuantity(t *testing.T) {
	store, _ := newTestStore(t, 8)
	sess := store.Create()
	ctx := context.Background()
	sess.AddItem(ctx, "9")

	tests := []struct {
		name      string
		id        string
		delta     int
		wantCount int
		wantTotal int64
	}{
		{"increment", "9", 2, 1, 360},
		{"unknown id", "10", 5, 1, 360},
		{"decrement", "9", -1, 1, 240},
		{"decrement to zero removes", "9", -2, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := sess.AdjustQuantity(tt.id, tt.delta)
			if view.Count != tt.wantCount || view.Total != tt.wantTotal {
				t.Errorf("AdjustQuantity(%s, %d) = %+v, want count %d total %d", tt.id, tt.delta, view, tt.wantCount, tt.wantTotal)
			}
		})
	}
}

func TestSubmitOrder_EmptyCartKeepsDraft(t *testing.T) {
	store, sink := newTestStore(t, 8)
	sess := store.Create()

	_, err := sess.SubmitOrder(context.Background(), orderForm())
	if !errors.Is(err, order.ErrEmptyCart) {
		t.Fatalf("SubmitOrder() error = %v, want ErrEmptyCart", err)
	}
	if sess.Forms().Order != orderForm() {
		t.Errorf("draft = %+v, want kept", sess.Forms().Order)
	}
	kinds := sink.kinds()
	if len(kinds) != 1 || kinds[0] != models.KindCartEmpty {
		t.Errorf("notifications = %v, want [cart_empty]", kinds)
	}
}

func TestSubmitBooking_LeavesCart(t *testing.T) {
	store, _ := newTestStore(t, 8)
	sess := store.Create()
	ctx := context.Background()
	sess.AddItem(ctx, "7")

	sess.SaveBookingForm(models.BookingRequest{Name: "Oleg"})
	conf := sess.SubmitBooking(ctx, models.BookingRequest{Name: "Oleg", Phone: "+79990000000", Date: "2026-10-20", Time: "19:00", Guests: 2})
	if conf.Request.Guests != 2 {
		t.Errorf("confirmation = %+v", conf)
	}
	if !sess.Forms().Booking.IsZero() {
		t.Errorf("booking draft not reset")
	}
	if sess.Cart().Total != 250 {
		t.Errorf("cart changed by booking: %+v", sess.Cart())
	}
}

func TestConcurrentAdds(t *testing.T) {
	store, _ := newTestStore(t, 8)
	sess := store.Create()

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess.AddItem(context.Background(), "10")
		}()
	}
	wg.Wait()

	view := sess.Cart()
	if view.Count != 1 || view.Lines[0].Quantity != workers {
		t.Errorf("view = %+v, want one line with quantity %d", view, workers)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	store, _ := newTestStore(t, 8)
	a, b := store.Create(), store.Create()

	a.AddItem(context.Background(), "2")
	if b.Cart().Count != 0 {
		t.Errorf("session b sees session a's cart")
	}
}

func TestStore_GetAndEvict(t *testing.T) {
	store, _ := newTestStore(t, 2)
	first := store.Create()

	got, err := store.Get(first.ID)
	if err != nil || got != first {
		t.Fatalf("Get() = %v, %v", got, err)
	}

	store.Create()
	store.Create()
	if store.Len() != 2 {
		t.Errorf("Len() = %d, want 2", store.Len())
	}
	if _, err := store.Get(first.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get(evicted) error = %v, want ErrSessionNotFound", err)
	}
}

func TestNewStore_InvalidCapacity(t *testing.T) {
	_, err := NewStore(0, &Services{Logger: logger.NewWithWriter("test", io.Discard)})
	if err == nil {
		t.Errorf("NewStore(0) error = nil, want error")
	}
}

type blockingSink struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingSink) Notify(ctx context.Context, n models.Notification) error {
	b.entered <- struct{}{}
	<-b.release
	return nil
}

func TestAddItem_SlowSinkDoesNotHoldSession(t *testing.T) {
	log := logger.NewWithWriter("test", io.Discard)
	sink := &blockingSink{entered: make(chan struct{}, 1), release: make(chan struct{})}
	store, err := NewStore(4, &Services{
		Catalog:  catalog.Default(),
		Sink:     sink,
		Orders:   order.NewService(sink, log),
		Bookings: booking.NewService(sink, log),
		Logger:   log,
	})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	sess := store.Create()

	added := make(chan CartView, 1)
	go func() {
		view, _ := sess.AddItem(context.Background(), "8")
		added <- view
	}()
	<-sink.entered

	read := make(chan CartView, 1)
	go func() { read <- sess.Cart() }()

	select {
	case view := <-read:
		if view.Count != 1 || view.Total != 180 {
			t.Errorf("Cart() during notification = %+v, want the added line", view)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Cart() blocked while the sink was delivering")
	}

	close(sink.release)
	if view := <-added; view.Total != 180 {
		t.Errorf("AddItem() view = %+v", view)
	}
}
