package order

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/mangogik/catalog-hotel/internal/module/guestapp/catalog"
)

type stubServiceRepository struct {
	findByIDFunc      func(ctx context.Context, ID int64, tx *sql.Tx) (catalog.Service, error)
	findManyByIDsFunc func(ctx context.Context, IDs []int64, tx *sql.Tx) (map[int64]catalog.Service, error)
}

func (s *stubServiceRepository) FindByID(ctx context.Context, ID int64, tx *sql.Tx) (catalog.Service, error) {
	return s.findByIDFunc(ctx, ID, tx)
}

func (s *stubServiceRepository) FindManyByIDs(ctx context.Context, IDs []int64, tx *sql.Tx) (map[int64]catalog.Service, error) {
	return s.findManyByIDsFunc(ctx, IDs, tx)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func fixedCatalog(services ...catalog.Service) catalog.ServiceRepository {
	byID := make(map[int64]catalog.Service, len(services))
	for _, svc := range services {
		byID[svc.ID] = svc
	}

	return &stubServiceRepository{
		findManyByIDsFunc: func(ctx context.Context, IDs []int64, tx *sql.Tx) (map[int64]catalog.Service, error) {
			found := make(map[int64]catalog.Service)
			for _, id := range IDs {
				if svc, ok := byID[id]; ok {
					found[id] = svc
				}
			}
			return found, nil
		},
	}
}

func qtyPtr(v float64) *float64 { return &v }

func namePtr(s string) *string { return &s }

func TestComputeLinesFixedService(t *testing.T) {
	repo := fixedCatalog(catalog.Service{ID: 1, Name: "Laundry Express", Type: catalog.TypeFixed, Price: 50000})
	calc := NewPricingCalculator(quietLogger(), repo, false)

	lines, err := calc.ComputeLines(context.Background(), []CartItemRequest{
		{ID: 1, Quantity: qtyPtr(2)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].LineTotal != 100000 {
		t.Fatalf("want line total 100000, got %v", lines[0].LineTotal)
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("want quantity 2, got %v", lines[0].Quantity)
	}
}

func TestComputeLinesFixedServiceDefaultsQuantityToOne(t *testing.T) {
	repo := fixedCatalog(catalog.Service{ID: 1, Name: "Spa", Type: catalog.TypeFixed, Price: 150000})
	calc := NewPricingCalculator(quietLogger(), repo, false)

	lines, err := calc.ComputeLines(context.Background(), []CartItemRequest{{ID: 1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].Quantity != 1 || lines[0].LineTotal != 150000 {
		t.Fatalf("want qty 1 and total 150000, got %v and %v", lines[0].Quantity, lines[0].LineTotal)
	}
}

func TestComputeLinesFreeServiceClearsDetails(t *testing.T) {
	repo := fixedCatalog(catalog.Service{ID: 2, Name: "Welcome Drink", Type: catalog.TypeFree, Price: 25000})
	calc := NewPricingCalculator(quietLogger(), repo, false)

	weight := 4.0
	lines, err := calc.ComputeLines(context.Background(), []CartItemRequest{
		{ID: 2, Quantity: qtyPtr(5), Details: DetailsPayload{Weight: &weight, Package: namePtr("Large")}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := lines[0]
	if line.Quantity != 1 || line.PricePerUnit != 0 || line.LineTotal != 0 {
		t.Fatalf("free service should be forced to qty 1 price 0, got %+v", line)
	}
	if line.Details.Weight != nil || line.Details.Package != nil {
		t.Fatalf("free service should carry no details, got %+v", line.Details)
	}
}

func TestComputeLinesPerUnitUsesWeight(t *testing.T) {
	repo := fixedCatalog(catalog.Service{ID: 3, Name: "Laundry per Kg", Type: catalog.TypePerUnit, Price: 12000})
	calc := NewPricingCalculator(quietLogger(), repo, false)

	weight := 2.5
	lines, err := calc.ComputeLines(context.Background(), []CartItemRequest{
		{ID: 3, Details: DetailsPayload{Weight: &weight}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].Quantity != 2.5 || lines[0].LineTotal != 30000 {
		t.Fatalf("want qty 2.5 total 30000, got %v and %v", lines[0].Quantity, lines[0].LineTotal)
	}
}

func TestComputeLinesPerUnitWithoutWeightIsZero(t *testing.T) {
	repo := fixedCatalog(catalog.Service{ID: 3, Name: "Laundry per Kg", Type: catalog.TypePerUnit, Price: 12000})
	calc := NewPricingCalculator(quietLogger(), repo, false)

	lines, err := calc.ComputeLines(context.Background(), []CartItemRequest{{ID: 3}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].Quantity != 0 || lines[0].LineTotal != 0 {
		t.Fatalf("missing weight should zero the line, got %+v", lines[0])
	}
}

func TestComputeLinesSelectableOption(t *testing.T) {
	svc := catalog.Service{
		ID:    4,
		Name:  "Airport Transfer",
		Type:  catalog.TypeSelectable,
		Price: 100000,
		Options: []catalog.Option{
			{Name: "Sedan", Price: 150000},
			{Name: "Van", Price: 250000},
		},
	}
	calc := NewPricingCalculator(quietLogger(), fixedCatalog(svc), false)

	lines, err := calc.ComputeLines(context.Background(), []CartItemRequest{
		{ID: 4, Details: DetailsPayload{Package: namePtr("Van")}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].PricePerUnit != 250000 {
		t.Fatalf("want matched option price 250000, got %v", lines[0].PricePerUnit)
	}

	// An unmatched option name prices to zero rather than the base price.
	lines, err = calc.ComputeLines(context.Background(), []CartItemRequest{
		{ID: 4, Details: DetailsPayload{Package: namePtr("Limousine")}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].PricePerUnit != 0 || lines[0].LineTotal != 0 {
		t.Fatalf("want unmatched option priced at 0, got %+v", lines[0])
	}
}

func TestComputeLinesMultipleOptionsQuantityMap(t *testing.T) {
	svc := catalog.Service{
		ID:   5,
		Name: "Minibar Refill",
		Type: catalog.TypeMultipleOptions,
		Options: []catalog.Option{
			{Name: "A", Price: 20000},
			{Name: "B", Price: 15000},
		},
	}
	calc := NewPricingCalculator(quietLogger(), fixedCatalog(svc), false)

	lines, err := calc.ComputeLines(context.Background(), []CartItemRequest{
		{
			ID:       5,
			Quantity: qtyPtr(3),
			Details: DetailsPayload{
				Packages: &PackageSelection{Quantities: map[string]int64{"A": 2, "B": 1, "C": 4}},
			},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	line := lines[0]
	if line.Quantity != 1 {
		t.Fatalf("multiple_options should force quantity 1, got %v", line.Quantity)
	}
	// 2×20000 + 1×15000, the unknown option C contributes nothing.
	if line.PricePerUnit != 55000 || line.LineTotal != 55000 {
		t.Fatalf("want 55000, got %v", line.LineTotal)
	}
}

func TestComputeLinesMultipleOptionsNameList(t *testing.T) {
	svc := catalog.Service{
		ID:   5,
		Name: "Minibar Refill",
		Type: catalog.TypeMultipleOptions,
		Options: []catalog.Option{
			{Name: "A", Price: 20000},
			{Name: "B", Price: 15000},
		},
	}
	calc := NewPricingCalculator(quietLogger(), fixedCatalog(svc), false)

	lines, err := calc.ComputeLines(context.Background(), []CartItemRequest{
		{ID: 5, Details: DetailsPayload{Packages: &PackageSelection{Names: []string{"A", "B"}}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].LineTotal != 35000 {
		t.Fatalf("want 35000, got %v", lines[0].LineTotal)
	}
}

func TestComputeLinesMultipleOptionsSkipsNonPositiveQuantities(t *testing.T) {
	svc := catalog.Service{
		ID:      5,
		Name:    "Minibar Refill",
		Type:    catalog.TypeMultipleOptions,
		Options: []catalog.Option{{Name: "A", Price: 20000}},
	}
	calc := NewPricingCalculator(quietLogger(), fixedCatalog(svc), false)

	lines, err := calc.ComputeLines(context.Background(), []CartItemRequest{
		{ID: 5, Details: DetailsPayload{Packages: &PackageSelection{Quantities: map[string]int64{"A": 0}}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].LineTotal != 0 {
		t.Fatalf("want 0, got %v", lines[0].LineTotal)
	}
}

func TestComputeLinesAnswersPaddedAndTruncated(t *testing.T) {
	svc := catalog.Service{
		ID:              6,
		Name:            "Room Decoration",
		Type:            catalog.TypeFixed,
		Price:           200000,
		ActiveQuestions: []string{"Occasion?", "Preferred color?", "Message?"},
	}
	calc := NewPricingCalculator(quietLogger(), fixedCatalog(svc), false)

	lines, err := calc.ComputeLines(context.Background(), []CartItemRequest{
		{ID: 6, Details: DetailsPayload{Answers: []string{"Anniversary"}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	answers := lines[0].Answers
	if answers == nil {
		t.Fatal("expected an answers snapshot")
	}
	if len(answers.Answers) != 3 {
		t.Fatalf("want answers padded to 3, got %d", len(answers.Answers))
	}
	if answers.Answers[0] != "Anniversary" || answers.Answers[1] != "" || answers.Answers[2] != "" {
		t.Fatalf("unexpected padded answers %v", answers.Answers)
	}

	lines, err = calc.ComputeLines(context.Background(), []CartItemRequest{
		{ID: 6, Details: DetailsPayload{Answers: []string{"a", "b", "c", "d", "e"}}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := lines[0].Answers.Answers; len(got) != 3 || got[2] != "c" {
		t.Fatalf("want answers truncated to 3, got %v", got)
	}
}

func TestComputeLinesNegativeQuantityClampsToZero(t *testing.T) {
	repo := fixedCatalog(catalog.Service{ID: 1, Name: "Laundry Express", Type: catalog.TypeFixed, Price: 50000})
	calc := NewPricingCalculator(quietLogger(), repo, false)

	lines, err := calc.ComputeLines(context.Background(), []CartItemRequest{
		{ID: 1, Quantity: qtyPtr(-3)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lines[0].Quantity != 0 || lines[0].LineTotal != 0 {
		t.Fatalf("negative quantity should clamp to zero, got %+v", lines[0])
	}
}

func TestComputeLinesUnknownServiceSkipped(t *testing.T) {
	repo := fixedCatalog(catalog.Service{ID: 1, Name: "Laundry Express", Type: catalog.TypeFixed, Price: 50000})
	calc := NewPricingCalculator(quietLogger(), repo, false)

	lines, err := calc.ComputeLines(context.Background(), []CartItemRequest{
		{ID: 1, Quantity: qtyPtr(1)},
		{ID: 999},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("unknown service should be skipped, got %d lines", len(lines))
	}
}

func TestComputeLinesUnknownServiceStrictFails(t *testing.T) {
	repo := fixedCatalog(catalog.Service{ID: 1, Name: "Laundry Express", Type: catalog.TypeFixed, Price: 50000})
	calc := NewPricingCalculator(quietLogger(), repo, true)

	_, err := calc.ComputeLines(context.Background(), []CartItemRequest{
		{ID: 1},
		{ID: 999},
	})
	if err == nil {
		t.Fatal("expected strict mode to fail on unknown service")
	}
}
