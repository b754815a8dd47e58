package stay

import "time"

type Stay struct {
	ID          int64
	CustomerID  int64
	AccessToken string
	RoomLabel   *string
	Status      string
	CheckinAt   *time.Time
	CheckoutAt  *time.Time
}
