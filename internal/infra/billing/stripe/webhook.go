package stripe

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

type EventType string

const (
	EventCheckoutCompleted   EventType = "checkout.session.completed"
	EventSubscriptionUpdated EventType = "customer.subscription.updated"
	EventSubscriptionDeleted EventType = "customer.subscription.deleted"
)

// Event is the subset of a Stripe webhook this service acts on. Unhandled
// event types map to Ignored=true rather than an error, so the endpoint can
// acknowledge everything Stripe sends.
type Event struct {
	Type             EventType
	Ignored          bool
	FirmID           string
	Plan             domain.Plan
	CustomerID       string
	SubscriptionID   string
	Status           domain.SubscriptionStatus
	CurrentPeriodEnd time.Time
}

type checkoutSessionPayload struct {
	ID                string            `json:"id"`
	ClientReferenceID string            `json:"client_reference_id"`
	Customer          string            `json:"customer"`
	Subscription      string            `json:"subscription"`
	Metadata          map[string]string `json:"metadata"`
}

type subscriptionPayload struct {
	ID       string            `json:"id"`
	Customer string            `json:"customer"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
	Items    struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
		} `json:"data"`
	} `json:"items"`
}

// ParseEvent verifies the webhook signature and maps the payload. Payloads
// are decoded into local structs keyed on stable field names, and version
// mismatch between the event and the SDK's pinned API version is ignored,
// so events from accounts on older or newer versions still verify.
func (c *Client) ParseEvent(payload []byte, signatureHeader string) (Event, error) {
	stripeEvent, err := webhook.ConstructEventWithOptions(payload, signatureHeader, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Event{}, fmt.Errorf("verify webhook signature: %w", err)
	}

	eventType := EventType(stripeEvent.Type)
	switch eventType {
	case EventCheckoutCompleted:
		var session checkoutSessionPayload
		if err := json.Unmarshal(stripeEvent.Data.Raw, &session); err != nil {
			return Event{}, fmt.Errorf("decode checkout session: %w", err)
		}
		firmID := session.Metadata["firm_id"]
		if firmID == "" {
			firmID = session.ClientReferenceID
		}
		return Event{
			Type:           eventType,
			FirmID:         firmID,
			Plan:           domain.Plan(session.Metadata["plan"]),
			CustomerID:     session.Customer,
			SubscriptionID: session.Subscription,
			Status:         domain.SubActive,
		}, nil
	case EventSubscriptionUpdated, EventSubscriptionDeleted:
		var sub subscriptionPayload
		if err := json.Unmarshal(stripeEvent.Data.Raw, &sub); err != nil {
			return Event{}, fmt.Errorf("decode subscription: %w", err)
		}
		event := Event{
			Type:           eventType,
			FirmID:         sub.Metadata["firm_id"],
			Plan:           domain.Plan(sub.Metadata["plan"]),
			CustomerID:     sub.Customer,
			SubscriptionID: sub.ID,
			Status:         mapSubscriptionStatus(sub.Status),
		}
		if eventType == EventSubscriptionDeleted {
			event.Status = domain.SubCanceled
		}
		if len(sub.Items.Data) > 0 && sub.Items.Data[0].CurrentPeriodEnd > 0 {
			event.CurrentPeriodEnd = time.Unix(sub.Items.Data[0].CurrentPeriodEnd, 0).UTC()
		}
		return event, nil
	default:
		return Event{Type: eventType, Ignored: true}, nil
	}
}

func mapSubscriptionStatus(status string) domain.SubscriptionStatus {
	switch status {
	case "active", "trialing":
		return domain.SubActive
	case "past_due", "unpaid", "incomplete":
		return domain.SubPastDue
	default:
		return domain.SubCanceled
	}
}
