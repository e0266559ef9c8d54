package dto

import (
	"time"

	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

// subscriptionDateLayout matches the DD-MM-YYYY wire format.
const subscriptionDateLayout = "02-01-2006"

// SubscriptionRequest payload for create and update.
type SubscriptionRequest struct {
	AdminID   string `json:"admin_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status,omitempty"`
}

// SubscriptionResponse is the wire shape of a plan.
type SubscriptionResponse struct {
	ID        string    `json:"id"`
	AdminID   string    `json:"admin_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// FromSubscription maps a domain subscription to its response shape.
func FromSubscription(sub *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:        sub.ID,
		AdminID:   sub.AdminID,
		StartDate: sub.StartDate.Format(subscriptionDateLayout),
		EndDate:   sub.EndDate.Format(subscriptionDateLayout),
		Status:    sub.Status,
		CreatedAt: sub.CreatedAt,
	}
}

// FromSubscriptions maps a slice of domain subscriptions.
func FromSubscriptions(subs []domain.Subscription) []SubscriptionResponse {
	result := make([]SubscriptionResponse, len(subs))
	for i := range subs {
		result[i] = FromSubscription(&subs[i])
	}
	return result
}
