package booking

import (
	"context"
	"errors"
	"io"
	"testing"

	"southern-night/internal/logger"
	"southern-night/internal/models"
)

type recordingSink struct {
	got []models.Notification
	err error
}

func (r *recordingSink) Notify(ctx context.Context, n models.Notification) error {
	r.got = append(r.got, n)
	return r.err
}

func TestSubmit(t *testing.T) {
	tests := []struct {
		name    string
		sinkErr error
	}{
		{"sink ok", nil},
		{"sink failing", errors.New("telegram unreachable")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{err: tt.sinkErr}
			svc := NewService(sink, logger.NewWithWriter("test", io.Discard))
			req := models.BookingRequest{Name: "Oleg", Phone: "+79990000000", Date: "2026-10-20", Time: "19:30", Guests: 4}
			submitted := req

			conf := svc.Submit(context.Background(), &req)

			if conf.Request != submitted {
				t.Errorf("confirmation request = %+v, want %+v", conf.Request, submitted)
			}
			if !req.IsZero() {
				t.Errorf("form not reset: %+v", req)
			}
			if len(sink.got) != 1 || sink.got[0].Kind != models.KindBookingConfirmed {
				t.Fatalf("notifications = %+v, want one booking_confirmed", sink.got)
			}
			if sink.got[0].Details["guests"] != "4" || sink.got[0].Severity != models.SeverityNormal {
				t.Errorf("notification = %+v", sink.got[0])
			}
		})
	}
}

func TestSubmit_Repeatable(t *testing.T) {
	sink := &recordingSink{}
	svc := NewService(sink, logger.NewWithWriter("test", io.Discard))

	for i := 0; i < 3; i++ {
		req := models.BookingRequest{Name: "Guest", Phone: "+70000000000", Date: "2026-11-01", Time: "12:00", Guests: i + 1}
		svc.Submit(context.Background(), &req)
	}
	if len(sink.got) != 3 {
		t.Errorf("got %d confirmations, want 3", len(sink.got))
	}
}
