package domain

import "time"

// Subscription is an administrator's access plan. Managed exclusively by
// general administrators.
type Subscription struct {
	ID        string
	AdminID   string
	StartDate time.Time
	EndDate   time.Time
	Status    string
	CreatedAt time.Time
}
