package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// OrderCreatedInvoice is the payload the downstream automation endpoint
// receives for every persisted order.
type OrderCreatedInvoice struct {
	StayID        int64         `json:"stay_id"`
	StayToken     string        `json:"stay_token"`
	GuestName     *string       `json:"guest_name"`
	GuestPhone    *string       `json:"guest_phone"`
	RoomLabel     *string       `json:"room_label"`
	OrderID       int64         `json:"order_id"`
	OrderCode     string        `json:"order_code"`
	Notes         *string       `json:"notes"`
	Subtotal      float64       `json:"subtotal"`
	DiscountTotal float64       `json:"discount_total"`
	GrandTotal    float64       `json:"grand_total"`
	Currency      string        `json:"currency"`
	Items         []InvoiceItem `json:"items"`
	PaymentURL    *string       `json:"payment_url"`
	Payment       PaymentInfo   `json:"payment"`
	CreatedAtISO  string        `json:"created_at_iso"`
}

type InvoiceItem struct {
	ServiceID    int64       `json:"service_id"`
	ServiceName  string      `json:"service_name"`
	Quantity     float64     `json:"quantity"`
	PricePerUnit float64     `json:"price_per_unit"`
	LineTotal    float64     `json:"line_total"`
	Details      interface{} `json:"details"`
	Answers      interface{} `json:"answers"`
}

type PaymentInfo struct {
	PaymentID int64   `json:"payment_id"`
	Method    string  `json:"method"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

type OrderCreatedEvent struct {
	Event      string              `json:"event"`
	DeliveryID string              `json:"delivery_id"`
	SentAt     string              `json:"sent_at"`
	Invoice    OrderCreatedInvoice `json:"invoice"`
}

type Notifier interface {
	Enqueue(invoice OrderCreatedInvoice)
	Close()
}

type notifier struct {
	logger      *logrus.Logger
	url         string
	maxAttempts int
	retryDelay  time.Duration
	hc          *http.Client
	queue       chan OrderCreatedEvent
	done        chan struct{}
}

type NotifierProperty struct {
	Logger      *logrus.Logger
	URL         string
	MaxAttempts int
	RetryDelay  time.Duration
	Timeout     time.Duration
}

func NewNotifier(props NotifierProperty) Notifier {
	n := &notifier{
		logger:      props.Logger,
		url:         props.URL,
		maxAttempts: props.MaxAttempts,
		retryDelay:  props.RetryDelay,
		hc:          &http.Client{Timeout: props.Timeout},
		queue:       make(chan OrderCreatedEvent, 64),
		done:        make(chan struct{}),
	}

	go n.work()

	return n
}

// Enqueue hands an order-created event to the delivery worker. It never
// blocks the caller: when the queue is saturated the event is dropped with a
// log entry, since delivery is best effort.
func (n *notifier) Enqueue(invoice OrderCreatedInvoice) {
	event := OrderCreatedEvent{
		Event:      "ORDER_CREATED",
		DeliveryID: uuid.NewString(),
		SentAt:     time.Now().UTC().Format(time.RFC3339),
		Invoice:    invoice,
	}

	select {
	case n.queue <- event:
	default:
		n.logger.WithFields(logrus.Fields{
			"order_code":  invoice.OrderCode,
			"delivery_id": event.DeliveryID,
		}).Warn("webhook queue is full, event dropped")
	}
}

// Close drains the queue and stops the worker.
func (n *notifier) Close() {
	close(n.queue)
	<-n.done
}

func (n *notifier) work() {
	defer close(n.done)

	for event := range n.queue {
		n.deliver(event)
	}
}

func (n *notifier) deliver(event OrderCreatedEvent) {
	if n.url == "" {
		n.logger.WithField("order_code", event.Invoice.OrderCode).Warn("no webhook url configured, event skipped")
		return
	}

	body, _ := json.Marshal(event)

	var lastErr error
	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(n.retryDelay)
		}

		lastErr = n.post(body)
		if lastErr == nil {
			n.logger.WithFields(logrus.Fields{
				"order_code":  event.Invoice.OrderCode,
				"delivery_id": event.DeliveryID,
				"attempt":     attempt,
			}).Info("webhook delivered")

			return
		}
	}

	n.logger.WithError(lastErr).WithFields(logrus.Fields{
		"order_code":  event.Invoice.OrderCode,
		"delivery_id": event.DeliveryID,
	}).Error("webhook delivery permanently failed")
}

func (n *notifier) post(body []byte) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := n.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook endpoint responded with status %d", resp.StatusCode)
	}

	return nil
}
