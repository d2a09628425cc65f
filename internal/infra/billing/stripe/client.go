package stripe

import (
	"context"
	"errors"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/rohanbsher/immigration-ai/internal/config"
	"github.com/rohanbsher/immigration-ai/internal/domain"
)

// Client wraps the pieces of the Stripe API this service uses: checkout
// session creation and webhook verification. Subscription state is owned by
// Stripe; the local subscriptions table is a webhook-driven projection.
type Client struct {
	api           *client.API
	webhookSecret string
	prices        map[domain.Plan]string
}

func NewClient(cfg config.Config) (*Client, error) {
	if cfg.StripeSecretKey == "" {
		return nil, errors.New("STRIPE_SECRET_KEY is required")
	}
	api := &client.API{}
	api.Init(cfg.StripeSecretKey, nil)
	return &Client{
		api:           api,
		webhookSecret: cfg.StripeWebhookSecret,
		prices: map[domain.Plan]string{
			domain.PlanStarter:  cfg.StripePriceStarter,
			domain.PlanPractice: cfg.StripePricePractice,
			domain.PlanFirm:     cfg.StripePriceFirm,
		},
	}, nil
}

type CheckoutSession struct {
	ID  string
	URL string
}

// CreateCheckoutSession starts a subscription checkout for a firm. The firm
// id rides along as metadata so the completion webhook can attribute it.
func (c *Client) CreateCheckoutSession(ctx context.Context, firmID string, plan domain.Plan, customerEmail, successURL, cancelURL string) (CheckoutSession, error) {
	if !plan.Valid() {
		return CheckoutSession{}, fmt.Errorf("plan %q: %w", plan, domain.ErrInvalidArgument)
	}
	priceID := c.prices[plan]
	if priceID == "" {
		return CheckoutSession{}, fmt.Errorf("no price configured for plan %q", plan)
	}
	params := &stripeapi.CheckoutSessionParams{
		Mode: stripeapi.String(string(stripeapi.CheckoutSessionModeSubscription)),
		LineItems: []*stripeapi.CheckoutSessionLineItemParams{
			{Price: stripeapi.String(priceID), Quantity: stripeapi.Int64(1)},
		},
		SuccessURL:        stripeapi.String(successURL),
		CancelURL:         stripeapi.String(cancelURL),
		CustomerEmail:     stripeapi.String(customerEmail),
		ClientReferenceID: stripeapi.String(firmID),
		SubscriptionData: &stripeapi.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{"firm_id": firmID, "plan": string(plan)},
		},
	}
	params.Context = ctx
	params.AddMetadata("firm_id", firmID)
	params.AddMetadata("plan", string(plan))

	session, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, fmt.Errorf("create checkout session: %w", err)
	}
	return CheckoutSession{ID: session.ID, URL: session.URL}, nil
}
