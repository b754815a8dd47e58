package xendit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/pkg/errors"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestCreateInvoiceSuccess(t *testing.T) {
	var gotAuth string
	var gotReq CreateInvoiceRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/invoices" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CreateInvoiceResponse{
			ID:         "inv-123",
			ExternalID: gotReq.ExternalID,
			Status:     "PENDING",
			InvoiceURL: "https://checkout.xendit.example/inv-123",
		})
	}))
	defer srv.Close()

	repo := NewXenditRepository(srv.URL, "sk-test", testLogger(), srv.Client())

	resp, err := repo.CreateInvoice(context.Background(), CreateInvoiceRequest{
		ExternalID: "ORD-1-20250101000000-ABCD",
		Amount:     100000,
		Currency:   "IDR",
		Customer:   InvoiceCustomer{GivenNames: "Alex", Email: "guest@hotel.com"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// base64("sk-test:")
	if gotAuth != "Basic c2stdGVzdDo=" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
	if gotReq.Amount != 100000 {
		t.Fatalf("want amount 100000, got %d", gotReq.Amount)
	}
	if resp.ID != "inv-123" || resp.InvoiceURL != "https://checkout.xendit.example/inv-123" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestCreateInvoiceNon2xxIsBadGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error_code":"INVALID_API_KEY"}`))
	}))
	defer srv.Close()

	repo := NewXenditRepository(srv.URL, "sk-bad", testLogger(), srv.Client())

	_, err := repo.CreateInvoice(context.Background(), CreateInvoiceRequest{ExternalID: "ORD-X", Amount: 1})
	if err == nil {
		t.Fatal("expected an error")
	}

	ae := errors.Destruct(err)
	if ae.HTTPStatusCode != http.StatusBadGateway {
		t.Fatalf("want 502, got %d", ae.HTTPStatusCode)
	}
}

func TestCreateInvoiceUnreachableHostIsBadGateway(t *testing.T) {
	repo := NewXenditRepository("http://127.0.0.1:1", "sk-test", testLogger(), http.DefaultClient)

	_, err := repo.CreateInvoice(context.Background(), CreateInvoiceRequest{ExternalID: "ORD-X", Amount: 1})
	if err == nil {
		t.Fatal("expected an error")
	}

	ae := errors.Destruct(err)
	if ae.HTTPStatusCode != http.StatusBadGateway {
		t.Fatalf("want 502, got %d", ae.HTTPStatusCode)
	}
}
