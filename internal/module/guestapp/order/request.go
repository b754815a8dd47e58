package order

import "encoding/json"

// DetailsPayload is the free-form details object of a cart item. Its shape
// depends on the service's pricing model, so it is decoded once here and
// consumed as a tagged union by the pricing calculator.
type DetailsPayload struct {
	Package  *string
	Packages *PackageSelection
	Weight   *float64
	Answers  []string
}

func (d *DetailsPayload) UnmarshalJSON(data []byte) error {
	var aux struct {
		Package  *string         `json:"package"`
		Packages json.RawMessage `json:"packages"`
		Weight   *float64        `json:"weight"`
		Answers  []string        `json:"answers"`
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	d.Package = aux.Package
	d.Weight = aux.Weight
	d.Answers = aux.Answers
	d.Packages = nil

	if len(aux.Packages) > 0 && string(aux.Packages) != "null" {
		var selection PackageSelection
		if err := json.Unmarshal(aux.Packages, &selection); err != nil {
			return err
		}
		d.Packages = &selection
	}

	return nil
}

type CartItemRequest struct {
	ID       int64          `json:"id" validate:"required"`
	Quantity *float64       `json:"quantity" validate:"omitempty,gte=0"`
	Details  DetailsPayload `json:"details"`
}

type PreviewRequest struct {
	Items       []CartItemRequest `json:"items" validate:"required,min=1,dive"`
	PromotionID *int64            `json:"promotion_id"`
}

type CheckoutRequest struct {
	Items             []CartItemRequest `json:"items" validate:"required,min=1,dive"`
	PromotionID       *int64            `json:"promotion_id"`
	PaymentPreference string            `json:"payment_preference" validate:"required,oneof=cash online"`
	OrderNotes        *string           `json:"order_notes" validate:"omitempty,max=2000"`
}

type GetManyOrderRequest struct {
	Page int64 `validate:"required,gte=1"`
	Size int64 `validate:"required,gte=1,lte=50"`
}
