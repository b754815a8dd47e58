package promotion

import (
	"math"
	"strings"
	"time"

	"github.com/mangogik/catalog-hotel/internal/module/guestapp/customer"
)

type Eligibility struct {
	OK     bool
	Reason string
}

func eligible() Eligibility {
	return Eligibility{OK: true}
}

func ineligible(reason string) Eligibility {
	return Eligibility{OK: false, Reason: reason}
}

// Evaluate runs the checkout-time eligibility rules: the promotion must be
// active, at least one selected service must intersect a non-empty scope,
// and the type-specific rule must pass. The first failing rule wins.
func Evaluate(p Promotion, c customer.Customer, selectedServiceIDs []int64, asOf time.Time) Eligibility {
	if !p.Active {
		return ineligible("promotion is inactive")
	}

	if len(p.ScopedServiceIDs) > 0 {
		intersects := false
		for _, id := range selectedServiceIDs {
			if p.InScope(id) {
				intersects = true
				break
			}
		}
		if !intersects {
			return ineligible("no scoped services selected")
		}
	}

	return evaluateTypeRule(p, c, asOf)
}

// EvaluateForCustomer runs the browse-time variant, which has no cart and
// therefore skips the scope-intersection rule.
func EvaluateForCustomer(p Promotion, c customer.Customer, asOf time.Time) Eligibility {
	if !p.Active {
		return ineligible("promotion is inactive")
	}

	return evaluateTypeRule(p, c, asOf)
}

func evaluateTypeRule(p Promotion, c customer.Customer, asOf time.Time) Eligibility {
	switch p.Type {
	case TypeBirthday:
		return evaluateBirthday(p, c, asOf)
	case TypeMembership:
		return evaluateMembership(p, c)
	default:
		return eligible()
	}
}

func evaluateBirthday(p Promotion, c customer.Customer, asOf time.Time) Eligibility {
	if c.BirthDate == nil {
		return ineligible("customer has no birth date")
	}

	lead := int64(DefaultBirthdayLeadDays)
	if p.BirthdayDaysBefore != nil {
		lead = *p.BirthdayDaysBefore
	}

	asOfDate := dateOnly(asOf)
	birthday := time.Date(asOf.Year(), c.BirthDate.Month(), c.BirthDate.Day(), 0, 0, 0, 0, time.UTC)

	// A birthday that already passed by more than the lead window counts
	// toward next year's occurrence.
	if birthday.Before(asOfDate.AddDate(0, 0, -int(lead))) {
		birthday = birthday.AddDate(1, 0, 0)
	}

	days := int64(birthday.Sub(asOfDate).Hours() / 24)
	if days >= 0 && days <= lead {
		return eligible()
	}

	return ineligible("not within birthday window")
}

func evaluateMembership(p Promotion, c customer.Customer) Eligibility {
	if c.MembershipTier == nil || p.MembershipTier == nil {
		return ineligible("membership tier not matched")
	}

	if !strings.EqualFold(*c.MembershipTier, *p.MembershipTier) {
		return ineligible("membership tier not matched")
	}

	return eligible()
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PricedLine is the slice of a cart line the discount computation needs.
type PricedLine struct {
	ServiceID int64
	LineTotal float64
}

// ComputeDiscount applies the percent discount to the scoped base first,
// then the amount discount against what remains. The result is clamped to
// [0, subtotal] and rounded to whole rupiah.
func ComputeDiscount(p Promotion, lines []PricedLine, subtotal float64) float64 {
	var scopeBase float64
	for _, line := range lines {
		if p.InScope(line.ServiceID) {
			scopeBase += line.LineTotal
		}
	}

	var discount float64

	if p.DiscountPercent != nil && *p.DiscountPercent > 0 {
		pct := *p.DiscountPercent
		percentDiscount := scopeBase * float64(pct) / 100.0
		discount += percentDiscount
		scopeBase -= percentDiscount
		if scopeBase < 0 {
			scopeBase = 0
		}
	}

	if p.DiscountAmount != nil && *p.DiscountAmount > 0 {
		discount += math.Min(*p.DiscountAmount, scopeBase)
	}

	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	return math.Round(discount)
}
