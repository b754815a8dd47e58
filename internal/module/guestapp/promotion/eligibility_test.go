package promotion

import (
	"testing"
	"time"

	"github.com/mangogik/catalog-hotel/internal/module/guestapp/customer"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestEvaluateInactivePromotion(t *testing.T) {
	p := Promotion{ID: 1, Type: TypeGeneric, Active: false}

	result := Evaluate(p, customer.Customer{ID: 1}, []int64{10}, time.Now().UTC())
	if result.OK {
		t.Fatal("expected inactive promotion to be ineligible")
	}
	if result.Reason != "promotion is inactive" {
		t.Fatalf("unexpected reason %q", result.Reason)
	}
}

func TestEvaluateScopeIntersection(t *testing.T) {
	p := Promotion{ID: 1, Type: TypeGeneric, Active: true, ScopedServiceIDs: []int64{10, 11}}

	if result := Evaluate(p, customer.Customer{ID: 1}, []int64{12, 13}, time.Now().UTC()); result.OK {
		t.Fatal("expected no intersection to be ineligible")
	}

	if result := Evaluate(p, customer.Customer{ID: 1}, []int64{12, 11}, time.Now().UTC()); !result.OK {
		t.Fatalf("expected intersection to be eligible, got reason %q", result.Reason)
	}
}

func TestEvaluateEmptyScopeAppliesToAll(t *testing.T) {
	p := Promotion{ID: 1, Type: TypeGeneric, Active: true}

	if result := Evaluate(p, customer.Customer{ID: 1}, []int64{99}, time.Now().UTC()); !result.OK {
		t.Fatalf("expected empty scope to be eligible, got reason %q", result.Reason)
	}
}

func TestEvaluateBirthdayWindow(t *testing.T) {
	asOf := time.Date(2025, time.June, 10, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		birthDate *time.Time
		lead      *int64
		want      bool
	}{
		{name: "on the birthday", birthDate: datePtr(1990, time.June, 10), want: true},
		{name: "three days before", birthDate: datePtr(1990, time.June, 13), want: true},
		{name: "four days before", birthDate: datePtr(1990, time.June, 14), want: false},
		{name: "day after has passed", birthDate: datePtr(1990, time.June, 9), want: false},
		{name: "custom lead of seven days", birthDate: datePtr(1990, time.June, 16), lead: int64Ptr(7), want: true},
		{name: "no birth date", birthDate: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Promotion{ID: 1, Type: TypeBirthday, Active: true, BirthdayDaysBefore: tt.lead}
			c := customer.Customer{ID: 1, BirthDate: tt.birthDate}

			result := Evaluate(p, c, []int64{10}, asOf)
			if result.OK != tt.want {
				t.Fatalf("want eligible=%v, got %v (reason %q)", tt.want, result.OK, result.Reason)
			}
		})
	}
}

func TestEvaluateBirthdayRollsForwardAcrossYearEnd(t *testing.T) {
	// Late December evaluation against an early January birthday.
	asOf := time.Date(2025, time.December, 30, 8, 0, 0, 0, time.UTC)
	p := Promotion{ID: 1, Type: TypeBirthday, Active: true, BirthdayDaysBefore: int64Ptr(3)}
	c := customer.Customer{ID: 1, BirthDate: datePtr(1992, time.January, 1)}

	result := Evaluate(p, c, []int64{10}, asOf)
	if !result.OK {
		t.Fatalf("expected next year's birthday within the window, got reason %q", result.Reason)
	}
}

func TestEvaluateMembershipCaseInsensitive(t *testing.T) {
	p := Promotion{ID: 1, Type: TypeMembership, Active: true, MembershipTier: strPtr("Gold")}

	if result := Evaluate(p, customer.Customer{ID: 1, MembershipTier: strPtr("GOLD")}, []int64{10}, time.Now().UTC()); !result.OK {
		t.Fatalf("expected case-insensitive tier match, got reason %q", result.Reason)
	}

	if result := Evaluate(p, customer.Customer{ID: 1, MembershipTier: strPtr("silver")}, []int64{10}, time.Now().UTC()); result.OK {
		t.Fatal("expected tier mismatch to be ineligible")
	}

	if result := Evaluate(p, customer.Customer{ID: 1}, []int64{10}, time.Now().UTC()); result.OK {
		t.Fatal("expected customer without tier to be ineligible")
	}
}

func TestEvaluateForCustomerSkipsScopeRule(t *testing.T) {
	p := Promotion{ID: 1, Type: TypeGeneric, Active: true, ScopedServiceIDs: []int64{10}}

	if result := EvaluateForCustomer(p, customer.Customer{ID: 1}, time.Now().UTC()); !result.OK {
		t.Fatalf("expected browse-time evaluation to skip scope, got reason %q", result.Reason)
	}
}

func TestComputeDiscountPercentOnScopedBase(t *testing.T) {
	p := Promotion{ID: 1, Active: true, DiscountPercent: int64Ptr(10), ScopedServiceIDs: []int64{1}}
	lines := []PricedLine{
		{ServiceID: 1, LineTotal: 100000},
		{ServiceID: 2, LineTotal: 50000},
	}

	got := ComputeDiscount(p, lines, 150000)
	if got != 10000 {
		t.Fatalf("want 10000, got %v", got)
	}
}

func TestComputeDiscountPercentThenAmount(t *testing.T) {
	p := Promotion{ID: 1, Active: true, DiscountPercent: int64Ptr(50), DiscountAmount: float64Ptr(80000)}
	lines := []PricedLine{{ServiceID: 1, LineTotal: 100000}}

	// 50% leaves a 50000 base, so the amount part caps at 50000.
	got := ComputeDiscount(p, lines, 100000)
	if got != 100000 {
		t.Fatalf("want 100000, got %v", got)
	}
}

func TestComputeDiscountClampedToSubtotal(t *testing.T) {
	p := Promotion{ID: 1, Active: true, DiscountAmount: float64Ptr(999999)}
	lines := []PricedLine{{ServiceID: 1, LineTotal: 25000}}

	got := ComputeDiscount(p, lines, 25000)
	if got != 25000 {
		t.Fatalf("want 25000, got %v", got)
	}
}

func TestComputeDiscountRoundsToWholeRupiah(t *testing.T) {
	p := Promotion{ID: 1, Active: true, DiscountPercent: int64Ptr(3)}
	lines := []PricedLine{{ServiceID: 1, LineTotal: 33333}}

	got := ComputeDiscount(p, lines, 33333)
	if got != 1000 {
		t.Fatalf("want 1000, got %v", got)
	}
}

func TestComputeDiscountNoDiscountFields(t *testing.T) {
	p := Promotion{ID: 1, Active: true}
	lines := []PricedLine{{ServiceID: 1, LineTotal: 40000}}

	if got := ComputeDiscount(p, lines, 40000); got != 0 {
		t.Fatalf("want 0, got %v", got)
	}
}
