package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/quillworks/billing/internal/interfaces"
	"github.com/stripe/stripe-go/v82"
)

// TrialExtensionCall records one ExtendTrial invocation
type TrialExtensionCall struct {
	SubscriptionID string
	TrialEnd       int64
}

// SubscriptionCreateCall records one CreateSubscription invocation
type SubscriptionCreateCall struct {
	CustomerID string
	PriceID    string
}

// FakeBillingGateway implements interfaces.BillingGateway, recording every
// call and returning the injected errors when set.
type FakeBillingGateway struct {
	mu sync.Mutex

	TrialExtensions []TrialExtensionCall
	Cancelled       []string
	Created         []SubscriptionCreateCall
	Uncollectible   []string
	CheckoutSpecs   []*interfaces.CheckoutSessionSpec

	Schedules     map[string]*stripe.SubscriptionSchedule
	Subscriptions map[string]*stripe.Subscription

	ExtendErr      error
	CancelErr      error
	CreateErr      error
	MarkInvoiceErr error
	ScheduleErr    error
	CustomerErr    error
	CheckoutErr    error
	PortalErr      error
}

func NewFakeBillingGateway() *FakeBillingGateway {
	return &FakeBillingGateway{
		Schedules:     make(map[string]*stripe.SubscriptionSchedule),
		Subscriptions: make(map[string]*stripe.Subscription),
	}
}

func (g *FakeBillingGateway) ExtendTrial(ctx context.Context, subscriptionID string, trialEnd int64) error {
	if g.ExtendErr != nil {
		return g.ExtendErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.TrialExtensions = append(g.TrialExtensions, TrialExtensionCall{
		SubscriptionID: subscriptionID,
		TrialEnd:       trialEnd,
	})
	return nil
}

func (g *FakeBillingGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	if g.CancelErr != nil {
		return g.CancelErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Cancelled = append(g.Cancelled, subscriptionID)
	return nil
}

func (g *FakeBillingGateway) CreateSubscription(ctx context.Context, customerID, priceID string) (string, error) {
	if g.CreateErr != nil {
		return "", g.CreateErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Created = append(g.Created, SubscriptionCreateCall{
		CustomerID: customerID,
		PriceID:    priceID,
	})
	return fmt.Sprintf("sub_fake_%d", len(g.Created)), nil
}

func (g *FakeBillingGateway) MarkInvoiceUncollectible(ctx context.Context, invoiceID string) error {
	if g.MarkInvoiceErr != nil {
		return g.MarkInvoiceErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Uncollectible = append(g.Uncollectible, invoiceID)
	return nil
}

func (g *FakeBillingGateway) RetrieveSchedule(ctx context.Context, scheduleID string) (*stripe.SubscriptionSchedule, error) {
	if g.ScheduleErr != nil {
		return nil, g.ScheduleErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	schedule, ok := g.Schedules[scheduleID]
	if !ok {
		return nil, fmt.Errorf("schedule %s not found", scheduleID)
	}
	return schedule, nil
}

func (g *FakeBillingGateway) RetrieveSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	sub, ok := g.Subscriptions[subscriptionID]
	if !ok {
		return nil, fmt.Errorf("subscription %s not found", subscriptionID)
	}
	return sub, nil
}

func (g *FakeBillingGateway) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	if g.CustomerErr != nil {
		return "", g.CustomerErr
	}
	return "cus_fake_" + userID, nil
}

func (g *FakeBillingGateway) CreateCheckoutSession(ctx context.Context, spec *interfaces.CheckoutSessionSpec) (*interfaces.CheckoutSession, error) {
	if g.CheckoutErr != nil {
		return nil, g.CheckoutErr
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.CheckoutSpecs = append(g.CheckoutSpecs, spec)
	return &interfaces.CheckoutSession{
		ID:  fmt.Sprintf("cs_fake_%d", len(g.CheckoutSpecs)),
		URL: "https://checkout.stripe.test/session",
	}, nil
}

func (g *FakeBillingGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*interfaces.PortalSession, error) {
	if g.PortalErr != nil {
		return nil, g.PortalErr
	}
	return &interfaces.PortalSession{
		ID:  "bps_fake_" + customerID,
		URL: "https://portal.stripe.test/session",
	}, nil
}
