package order

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/internal/module/guestapp/catalog"
	"github.com/mangogik/catalog-hotel/pkg/errors"
	"github.com/mangogik/catalog-hotel/pkg/status"
)

// PricingCalculator turns raw cart items into priced cart lines against the
// service catalog.
type PricingCalculator struct {
	logger            *logrus.Logger
	serviceRepository catalog.ServiceRepository
	strict            bool
}

// NewPricingCalculator builds a calculator. With strict set, an unknown
// service id fails the whole cart; otherwise unknown items are skipped with
// a diagnostic, so a partially valid cart can still check out.
func NewPricingCalculator(logger *logrus.Logger, serviceRepository catalog.ServiceRepository, strict bool) *PricingCalculator {
	return &PricingCalculator{
		logger:            logger,
		serviceRepository: serviceRepository,
		strict:            strict,
	}
}

func (p *PricingCalculator) ComputeLines(ctx context.Context, items []CartItemRequest) ([]CartLine, error) {
	ids := make([]int64, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		ids = append(ids, item.ID)
	}

	services, err := p.serviceRepository.FindManyByIDs(ctx, ids, nil)
	if err != nil {
		return nil, err
	}

	lines := make([]CartLine, 0, len(items))

	for _, item := range items {
		svc, ok := services[item.ID]
		if !ok {
			if p.strict {
				return nil, errors.New(http.StatusUnprocessableEntity, status.UNPROCESSABLE_ENTITY, fmt.Sprintf("service with id '%d' is not found in catalog", item.ID))
			}

			p.logger.WithContext(ctx).WithField("service_id", item.ID).Warn("cart item refers to an unknown service, skipped")
			continue
		}

		lines = append(lines, priceLine(svc, item))
	}

	return lines, nil
}

func priceLine(svc catalog.Service, item CartItemRequest) CartLine {
	quantity := 1.0
	if item.Quantity != nil {
		quantity = *item.Quantity
	}

	pricePerUnit := svc.Price
	details := LineDetails{
		Package:  item.Details.Package,
		Packages: item.Details.Packages,
		Weight:   item.Details.Weight,
	}

	switch svc.Type {
	case catalog.TypeSelectable:
		pricePerUnit = 0
		if item.Details.Package != nil {
			pricePerUnit = svc.OptionPrice(*item.Details.Package)
		}

	case catalog.TypeMultipleOptions:
		pricePerUnit = sumPackages(svc, item.Details.Packages)
		quantity = 1

	case catalog.TypePerUnit:
		weight := 0.0
		if item.Details.Weight != nil {
			weight = *item.Details.Weight
		}
		quantity = weight
		pricePerUnit = svc.Price

	case catalog.TypeFree:
		quantity = 1
		pricePerUnit = 0
		details = LineDetails{}
	}

	if svc.Type != catalog.TypeFree && quantity < 0 {
		quantity = 0
	}

	line := CartLine{
		ServiceID:    svc.ID,
		ServiceName:  svc.Name,
		ServiceType:  svc.Type,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		LineTotal:    pricePerUnit * quantity,
		Details:      details,
	}

	if len(svc.ActiveQuestions) > 0 {
		line.Answers = snapshotAnswers(svc.ActiveQuestions, item.Details.Answers)
	}

	return line
}

func sumPackages(svc catalog.Service, selection *PackageSelection) float64 {
	if selection == nil {
		return 0
	}

	var sum float64

	if selection.Quantities != nil {
		for name, qty := range selection.Quantities {
			if qty <= 0 {
				continue
			}
			sum += svc.OptionPrice(name) * float64(qty)
		}

		return sum
	}

	for _, name := range selection.Names {
		sum += svc.OptionPrice(name)
	}

	return sum
}

// snapshotAnswers pads the submitted answers with empty strings up to the
// question count and truncates anything beyond it, so the stored snapshot
// always lines up with the questions as asked.
func snapshotAnswers(questions []string, answers []string) *AnswersSnapshot {
	snapshot := make([]string, len(questions))
	copy(snapshot, answers)

	questionsCopy := make([]string, len(questions))
	copy(questionsCopy, questions)

	return &AnswersSnapshot{
		QuestionsSnapshot: questionsCopy,
		Answers:           snapshot,
	}
}
