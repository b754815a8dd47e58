package webhook

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestNotifierDeliversOrderCreatedEvent(t *testing.T) {
	received := make(chan OrderCreatedEvent, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event OrderCreatedEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("decode event: %v", err)
		}
		received <- event
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(NotifierProperty{
		Logger:      testLogger(),
		URL:         srv.URL,
		MaxAttempts: 3,
		RetryDelay:  10 * time.Millisecond,
		Timeout:     time.Second,
	})

	n.Enqueue(OrderCreatedInvoice{
		StayID:     9,
		OrderID:    42,
		OrderCode:  "ORD-42-20250101000000-ABCD",
		GrandTotal: 100000,
		Currency:   "IDR",
	})
	n.Close()

	select {
	case event := <-received:
		if event.Event != "ORDER_CREATED" {
			t.Fatalf("unexpected event name %q", event.Event)
		}
		if event.DeliveryID == "" {
			t.Fatal("expected a delivery id")
		}
		if event.Invoice.OrderCode != "ORD-42-20250101000000-ABCD" {
			t.Fatalf("unexpected order code %q", event.Invoice.OrderCode)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestNotifierRetriesUntilSuccess(t *testing.T) {
	var attempts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(NotifierProperty{
		Logger:      testLogger(),
		URL:         srv.URL,
		MaxAttempts: 3,
		RetryDelay:  10 * time.Millisecond,
		Timeout:     time.Second,
	})

	n.Enqueue(OrderCreatedInvoice{OrderID: 1, OrderCode: "ORD-1-20250101000000-ABCD"})
	n.Close()

	if got := attempts.Load(); got != 3 {
		t.Fatalf("want 3 attempts, got %d", got)
	}
}

func TestNotifierGivesUpAfterMaxAttempts(t *testing.T) {
	var attempts atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := NewNotifier(NotifierProperty{
		Logger:      testLogger(),
		URL:         srv.URL,
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
		Timeout:     time.Second,
	})

	n.Enqueue(OrderCreatedInvoice{OrderID: 1, OrderCode: "ORD-1-20250101000000-ABCD"})
	n.Close()

	if got := attempts.Load(); got != 3 {
		t.Fatalf("want exactly 3 attempts, got %d", got)
	}
}
