package order

import (
	"encoding/json"
	"time"
)

const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"

	PaymentMethodCash   = "cash"
	PaymentMethodOnline = "online"
)

type Order struct {
	ID                int64
	CustomerID        int64
	StayID            int64
	OrderCode         string
	PaymentPreference string
	Status            string
	Subtotal          float64
	DiscountTotal     float64
	GrandTotal        float64
	Notes             *string
	Items             []Item
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Item struct {
	ID           int64
	OrderID      int64
	ServiceID    int64
	ServiceName  string
	Quantity     float64
	PricePerUnit float64
	LineTotal    float64
	Details      LineDetails
	Answers      *AnswersSnapshot
}

type PromotionUsage struct {
	ID              int64
	OrderID         int64
	PromotionID     int64
	DiscountApplied float64
	FreeServiceID   *int64
	FreeServiceQty  int64
	Snapshot        UsageSnapshot
}

type Payment struct {
	ID         int64
	OrderID    int64
	Method     string
	Amount     float64
	Currency   string
	Status     string
	ExternalID *string
	InvoiceURL *string
	PaidAt     *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PackageSelection carries a multiple_options choice in either of its two
// accepted wire forms: a plain list of option names, or a name-to-quantity
// mapping.
type PackageSelection struct {
	Names      []string
	Quantities map[string]int64
}

func (s PackageSelection) MarshalJSON() ([]byte, error) {
	if s.Quantities != nil {
		return json.Marshal(s.Quantities)
	}

	return json.Marshal(s.Names)
}

func (s *PackageSelection) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err == nil {
		s.Names = names
		s.Quantities = nil
		return nil
	}

	var quantities map[string]float64
	if err := json.Unmarshal(data, &quantities); err != nil {
		return err
	}

	s.Quantities = make(map[string]int64, len(quantities))
	for name, qty := range quantities {
		s.Quantities[name] = int64(qty)
	}
	s.Names = nil

	return nil
}

// LineDetails is the persisted portion of a cart item's details. Answers are
// deliberately absent: they live in their own snapshot column.
type LineDetails struct {
	Package  *string           `json:"package,omitempty"`
	Packages *PackageSelection `json:"packages,omitempty"`
	Weight   *float64          `json:"weight,omitempty"`
}

type AnswersSnapshot struct {
	QuestionsSnapshot []string `json:"questions_snapshot"`
	Answers           []string `json:"answers"`
}

// CartLine is a priced cart entry, computed per request and discarded unless
// the order is persisted.
type CartLine struct {
	ServiceID    int64            `json:"service_id"`
	ServiceName  string           `json:"service_name"`
	ServiceType  string           `json:"type"`
	Quantity     float64          `json:"quantity"`
	PricePerUnit float64          `json:"price_per_unit"`
	LineTotal    float64          `json:"line_total"`
	Details      LineDetails      `json:"details"`
	Answers      *AnswersSnapshot `json:"answers_data,omitempty"`
}

// UsageSnapshot is the audit copy written alongside a promotion usage: the
// promotion, customer and computed lines exactly as they were at order time.
type UsageSnapshot struct {
	Promotion SnapshotPromotion `json:"promotion"`
	Customer  SnapshotCustomer  `json:"customer"`
	Services  []CartLine        `json:"services"`
	Computed  SnapshotComputed  `json:"computed"`
}

type SnapshotPromotion struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	DiscountPercent    *int64   `json:"discount_percent"`
	DiscountAmount     *float64 `json:"discount_amount"`
	FreeServiceID      *int64   `json:"free_service_id"`
	FreeServiceQty     *int64   `json:"free_service_qty"`
	BirthdayDaysBefore *int64   `json:"birthday_days_before"`
	MembershipTier     *string  `json:"membership_tier"`
	EventCode          *string  `json:"event_code"`
}

type SnapshotCustomer struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	BirthDate      *string `json:"birth_date"`
	MembershipType *string `json:"membership_type"`
}

type SnapshotComputed struct {
	Subtotal      float64 `json:"subtotal"`
	DiscountTotal float64 `json:"discount_total"`
}
