package promotion

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/internal/module/guestapp/catalog"
	"github.com/mangogik/catalog-hotel/internal/module/guestapp/customer"
	"github.com/mangogik/catalog-hotel/internal/pkg/session"
)

type PromotionUseCase interface {
	ListEligible(ctx context.Context, req ListEligibleRequest) (ListEligibleResponse, error)
}

type promotionUseCase struct {
	logger              *logrus.Logger
	timeout             time.Duration
	promotionRepository PromotionRepository
	customerRepository  customer.CustomerRepository
	serviceRepository   catalog.ServiceRepository
}

type PromotionUseCaseProperty struct {
	Logger              *logrus.Logger
	Timeout             time.Duration
	PromotionRepository PromotionRepository
	CustomerRepository  customer.CustomerRepository
	ServiceRepository   catalog.ServiceRepository
}

func NewPromotionUseCase(props PromotionUseCaseProperty) PromotionUseCase {
	return &promotionUseCase{
		logger:              props.Logger,
		timeout:             props.Timeout,
		promotionRepository: props.PromotionRepository,
		customerRepository:  props.CustomerRepository,
		serviceRepository:   props.ServiceRepository,
	}
}

// ListEligible implements PromotionUseCase.
func (u *promotionUseCase) ListEligible(ctx context.Context, req ListEligibleRequest) (ListEligibleResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	stay, err := session.GetStayFromCtx(ctx)
	if err != nil {
		return ListEligibleResponse{}, err
	}

	c, err := u.customerRepository.FindByID(ctx, stay.CustomerID, nil)
	if err != nil {
		u.logger.WithContext(ctx).WithField("stay_id", stay.ID).Warn("customer missing for stay, no promotions offered")
		return ListEligibleResponse{Promotions: []EligiblePromotion{}}, nil
	}

	promos, err := u.promotionRepository.FindManyActive(ctx, nil)
	if err != nil {
		return ListEligibleResponse{}, err
	}

	now := time.Now()

	freeServiceIDs := make([]int64, 0)
	for _, p := range promos {
		if p.FreeServiceID != nil {
			freeServiceIDs = append(freeServiceIDs, *p.FreeServiceID)
		}
	}

	freeServices := map[int64]catalog.Service{}
	if len(freeServiceIDs) > 0 {
		freeServices, err = u.serviceRepository.FindManyByIDs(ctx, freeServiceIDs, nil)
		if err != nil {
			return ListEligibleResponse{}, err
		}
	}

	eligible := make([]EligiblePromotion, 0)

	for _, p := range promos {
		if elig := EvaluateForCustomer(p, c, now); !elig.OK {
			continue
		}

		if req.ServiceID != nil && len(p.ScopedServiceIDs) > 0 && !p.InScope(*req.ServiceID) {
			continue
		}

		eligible = append(eligible, buildEligiblePromotion(p, freeServices))
	}

	return ListEligibleResponse{Promotions: eligible}, nil
}

func buildEligiblePromotion(p Promotion, freeServices map[int64]catalog.Service) EligiblePromotion {
	var badge, desc string

	if p.FreeServiceID != nil {
		name := "Selected Service"
		if svc, ok := freeServices[*p.FreeServiceID]; ok {
			name = svc.Name
		}

		qty := int64(1)
		if p.FreeServiceQty != nil && *p.FreeServiceQty > 1 {
			qty = *p.FreeServiceQty
		}

		if qty > 1 {
			badge = fmt.Sprintf("Free %d× %s", qty, name)
		} else {
			badge = "Free " + name
		}
		desc = badge
	}

	if p.DiscountPercent != nil && *p.DiscountPercent > 0 {
		badge = fmt.Sprintf("%d%% Discount", *p.DiscountPercent)
		desc = appendOffer(desc, fmt.Sprintf("%d%% off", *p.DiscountPercent))
	}

	if p.DiscountAmount != nil && *p.DiscountAmount > 0 {
		amount := formatIDR(*p.DiscountAmount)
		if p.DiscountPercent == nil || *p.DiscountPercent == 0 {
			badge = amount + " Off"
		}
		desc = appendOffer(desc, amount+" off")
	}

	if badge == "" {
		badge = "Offer"
	}
	if desc == "" {
		desc = "Special Offer"
	}

	return EligiblePromotion{
		ID:               p.ID,
		Name:             p.Name,
		Type:             p.Type,
		BadgeText:        badge,
		OfferDescription: desc,
		DiscountPercent:  p.DiscountPercent,
		DiscountAmount:   p.DiscountAmount,
		FreeServiceID:    p.FreeServiceID,
		FreeServiceQty:   p.FreeServiceQty,
		ScopedServiceIDs: p.ScopedServiceIDs,
	}
}

func appendOffer(desc, offer string) string {
	if desc == "" {
		return offer
	}

	return desc + " + " + offer
}

// formatIDR renders a rupiah amount with dot thousand separators, e.g.
// "Rp 50.000".
func formatIDR(amount float64) string {
	digits := strconv.FormatInt(int64(amount), 10)

	var out []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 && d != '-' {
			out = append(out, '.')
		}
		out = append(out, d)
	}

	return "Rp " + string(out)
}
