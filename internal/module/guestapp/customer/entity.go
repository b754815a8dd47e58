package customer

import "time"

type Customer struct {
	ID             int64
	Name           string
	Phone          *string
	Email          *string
	BirthDate      *time.Time
	MembershipTier *string
}
