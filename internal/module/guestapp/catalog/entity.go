package catalog

const (
	TypeFixed           = "fixed"
	TypeFree            = "free"
	TypePerUnit         = "per_unit"
	TypeSelectable      = "selectable"
	TypeMultipleOptions = "multiple_options"
)

type Option struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type Service struct {
	ID              int64
	Name            string
	Slug            string
	Type            string
	Price           float64
	UnitName        *string
	Options         []Option
	ActiveQuestions []string
}

// OptionPrice returns the price of the named option, or 0 when the name does
// not match any option.
func (s Service) OptionPrice(name string) float64 {
	for _, option := range s.Options {
		if option.Name == name {
			return option.Price
		}
	}

	return 0
}
