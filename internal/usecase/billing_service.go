package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

// SubscriptionEvent is a payment-provider webhook reduced to the fields
// this service projects. The transport layer maps provider payloads into
// this shape before calling ApplyEvent.
type SubscriptionEvent struct {
	FirmID           string
	Plan             domain.Plan
	CustomerID       string
	SubscriptionID   string
	Status           domain.SubscriptionStatus
	CurrentPeriodEnd time.Time
}

// BillingService keeps the local subscriptions table as a projection of
// webhook events and answers entitlement checks for paid features.
// Stripe owns the subscription; this table is never authored locally.
type BillingService struct {
	Subscriptions SubscriptionRepository
	Clock         Clock
}

func NewBillingService(subscriptions SubscriptionRepository, clock Clock) *BillingService {
	return &BillingService{Subscriptions: subscriptions, Clock: clock}
}

// ApplyEvent folds one webhook event into the projection. Events without
// firm attribution fall back to the stripe subscription id; an event that
// cannot be attributed at all is an error the webhook endpoint reports.
func (s *BillingService) ApplyEvent(ctx context.Context, event SubscriptionEvent) error {
	firmID := event.FirmID
	if firmID == "" && event.SubscriptionID != "" {
		existing, err := s.Subscriptions.GetByStripeSubscription(ctx, event.SubscriptionID)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		firmID = existing.FirmID
	}
	if firmID == "" {
		return fmt.Errorf("subscription event has no firm attribution: %w", domain.ErrInvalidArgument)
	}

	now := s.now()
	sub, err := s.Subscriptions.GetByFirm(ctx, firmID)
	if errors.Is(err, domain.ErrNotFound) {
		sub = domain.Subscription{ID: uuid.NewString(), FirmID: firmID, CreatedAt: now}
	} else if err != nil {
		return err
	}

	if event.CustomerID != "" {
		sub.StripeCustomerID = event.CustomerID
	}
	if event.SubscriptionID != "" {
		sub.StripeSubscriptionID = event.SubscriptionID
	}
	if event.Plan.Valid() {
		sub.Plan = event.Plan
	}
	if event.Status != "" {
		sub.Status = event.Status
	}
	if !event.CurrentPeriodEnd.IsZero() {
		sub.CurrentPeriodEnd = event.CurrentPeriodEnd
	}
	sub.UpdatedAt = now
	return s.Subscriptions.Upsert(ctx, sub)
}

func (s *BillingService) Subscription(ctx context.Context, firmID string) (domain.Subscription, error) {
	return s.Subscriptions.GetByFirm(ctx, firmID)
}

// RequireEntitlement reports whether the firm may use paid features. No
// subscription row at all reads as not entitled, not as an error.
func (s *BillingService) RequireEntitlement(ctx context.Context, firmID string) error {
	sub, err := s.Subscriptions.GetByFirm(ctx, firmID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("firm %s has no subscription: %w", firmID, domain.ErrNotEntitled)
	}
	if err != nil {
		return err
	}
	if !sub.Entitled(s.now()) {
		return fmt.Errorf("subscription is %s: %w", sub.Status, domain.ErrNotEntitled)
	}
	return nil
}

func (s *BillingService) now() time.Time {
	if s != nil && s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}
