package order

import "time"

type PromotionPreview struct {
	Eligible  bool               `json:"eligible"`
	Reason    *string            `json:"reason,omitempty"`
	Promotion *SnapshotPromotion `json:"promotion,omitempty"`
}

type PreviewResponse struct {
	Lines         []CartLine        `json:"lines"`
	Subtotal      float64           `json:"subtotal"`
	DiscountTotal float64           `json:"discount_total"`
	GrandTotal    float64           `json:"grand_total"`
	Promotion     *PromotionPreview `json:"promotion"`
}

type CheckoutResponse struct {
	OrderID    int64   `json:"order_id"`
	OrderCode  string  `json:"order_code"`
	PaymentID  int64   `json:"payment_id"`
	GrandTotal float64 `json:"grand_total"`
	InvoiceURL *string `json:"invoice_url"`
}

type ItemResponse struct {
	ServiceID    int64            `json:"service_id"`
	ServiceName  string           `json:"service_name"`
	Quantity     float64          `json:"quantity"`
	PricePerUnit float64          `json:"price_per_unit"`
	LineTotal    float64          `json:"line_total"`
	Details      LineDetails      `json:"details"`
	Answers      *AnswersSnapshot `json:"answers,omitempty"`
}

type PaymentResponse struct {
	ID         int64      `json:"id"`
	Method     string     `json:"method"`
	Amount     float64    `json:"amount"`
	Currency   string     `json:"currency"`
	Status     string     `json:"status"`
	InvoiceURL *string    `json:"invoice_url"`
	PaidAt     *time.Time `json:"paid_at"`
}

type OrderResponse struct {
	ID            int64            `json:"id"`
	OrderCode     string           `json:"order_code"`
	Status        string           `json:"status"`
	Subtotal      float64          `json:"subtotal"`
	DiscountTotal float64          `json:"discount_total"`
	GrandTotal    float64          `json:"grand_total"`
	Notes         *string          `json:"notes"`
	Items         []ItemResponse   `json:"items"`
	Payment       *PaymentResponse `json:"payment"`
	CreatedAt     time.Time        `json:"created_at"`
}

func (r *OrderResponse) PopulateFromEntity(o Order, latestPayment *Payment) {
	r.ID = o.ID
	r.OrderCode = o.OrderCode
	r.Status = o.Status
	r.Subtotal = o.Subtotal
	r.DiscountTotal = o.DiscountTotal
	r.GrandTotal = o.GrandTotal
	r.Notes = o.Notes
	r.CreatedAt = o.CreatedAt

	items := make([]ItemResponse, len(o.Items))
	for k, v := range o.Items {
		items[k] = ItemResponse{
			ServiceID:    v.ServiceID,
			ServiceName:  v.ServiceName,
			Quantity:     v.Quantity,
			PricePerUnit: v.PricePerUnit,
			LineTotal:    v.LineTotal,
			Details:      v.Details,
			Answers:      v.Answers,
		}
	}
	r.Items = items

	if latestPayment != nil {
		r.Payment = &PaymentResponse{
			ID:         latestPayment.ID,
			Method:     latestPayment.Method,
			Amount:     latestPayment.Amount,
			Currency:   latestPayment.Currency,
			Status:     latestPayment.Status,
			InvoiceURL: latestPayment.InvoiceURL,
			PaidAt:     latestPayment.PaidAt,
		}
	}
}

type GetManyOrderResponse struct {
	Orders []OrderResponse `json:"orders"`
}

type PageMeta struct {
	Page  int64 `json:"page"`
	Size  int64 `json:"size"`
	Total int64 `json:"total"`
}
