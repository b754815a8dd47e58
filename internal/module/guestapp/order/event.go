package order

// PaymentNotificationEvent is the asynchronous callback body posted by the
// payment gateway. ExternalID carries the order code used as the invoice's
// external reference.
type PaymentNotificationEvent struct {
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

// OrderCreatedEvent is published to the message broker after a checkout
// commits.
type OrderCreatedEvent struct {
	OrderID           int64   `json:"order_id"`
	OrderCode         string  `json:"order_code"`
	StayID            int64   `json:"stay_id"`
	CustomerID        int64   `json:"customer_id"`
	PaymentPreference string  `json:"payment_preference"`
	Subtotal          float64 `json:"subtotal"`
	DiscountTotal     float64 `json:"discount_total"`
	GrandTotal        float64 `json:"grand_total"`
}

// OrderPaidEvent is published after a paid gateway notification commits.
type OrderPaidEvent struct {
	OrderID   int64  `json:"order_id"`
	OrderCode string `json:"order_code"`
	PaidAt    string `json:"paid_at"`
}
