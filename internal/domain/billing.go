package domain

import "time"

type Plan string

const (
	PlanStarter  Plan = "starter"
	PlanPractice Plan = "practice"
	PlanFirm     Plan = "firm"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanStarter, PlanPractice, PlanFirm:
		return true
	default:
		return false
	}
}

type SubscriptionStatus string

const (
	SubActive   SubscriptionStatus = "active"
	SubPastDue  SubscriptionStatus = "past_due"
	SubCanceled SubscriptionStatus = "canceled"
)

type Subscription struct {
	ID                   string             `json:"id"`
	FirmID               string             `json:"firm_id"`
	StripeCustomerID     string             `json:"stripe_customer_id"`
	StripeSubscriptionID string             `json:"stripe_subscription_id"`
	Plan                 Plan               `json:"plan"`
	Status               SubscriptionStatus `json:"status"`
	CurrentPeriodEnd     time.Time          `json:"current_period_end"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// Entitled reports whether the subscription grants access to paid features
// (AI analysis, PDF filling) at the given instant.
func (s Subscription) Entitled(now time.Time) bool {
	return s.Status == SubActive && now.Before(s.CurrentPeriodEnd)
}
