package promotion

const (
	TypeGeneric    = "generic"
	TypeBirthday   = "birthday"
	TypeMembership = "membership"
)

// DefaultBirthdayLeadDays is the birthday lead window applied when a
// promotion does not carry its own.
const DefaultBirthdayLeadDays = 3

type Promotion struct {
	ID                 int64
	Name               string
	Type               string
	Active             bool
	DiscountPercent    *int64
	DiscountAmount     *float64
	FreeServiceID      *int64
	FreeServiceQty     *int64
	BirthdayDaysBefore *int64
	MembershipTier     *string
	EventCode          *string
	ScopedServiceIDs   []int64
}

// InScope reports whether the discount applies to the given service. An
// empty scope applies to every service.
func (p Promotion) InScope(serviceID int64) bool {
	if len(p.ScopedServiceIDs) == 0 {
		return true
	}

	for _, id := range p.ScopedServiceIDs {
		if id == serviceID {
			return true
		}
	}

	return false
}
