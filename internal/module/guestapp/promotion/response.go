package promotion

type ListEligibleRequest struct {
	ServiceID *int64
}

type EligiblePromotion struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Type             string   `json:"type"`
	BadgeText        string   `json:"badge_text"`
	OfferDescription string   `json:"offer_description"`
	DiscountPercent  *int64   `json:"discount_percent"`
	DiscountAmount   *float64 `json:"discount_amount"`
	FreeServiceID    *int64   `json:"free_service_id"`
	FreeServiceQty   *int64   `json:"free_service_qty"`
	ScopedServiceIDs []int64  `json:"scoped_service_ids"`
}

type ListEligibleResponse struct {
	Promotions []EligiblePromotion `json:"promotions"`
}
