package stripe

import (
	"context"

	ierr "github.com/quillworks/billing/internal/errors"
	"github.com/quillworks/billing/internal/interfaces"
	"github.com/quillworks/billing/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// gateway implements interfaces.BillingGateway on the Stripe API
type gateway struct {
	client *Client
	logger *logger.Logger
}

func NewGateway(client *Client, logger *logger.Logger) interfaces.BillingGateway {
	return &gateway{client: client, logger: logger}
}

func (g *gateway) ExtendTrial(ctx context.Context, subscriptionID string, trialEnd int64) error {
	params := &stripe.SubscriptionUpdateParams{
		TrialEnd:          stripe.Int64(trialEnd),
		ProrationBehavior: stripe.String("create_prorations"),
		TrialSettings: &stripe.SubscriptionUpdateTrialSettingsParams{
			EndBehavior: &stripe.SubscriptionUpdateTrialSettingsEndBehaviorParams{
				MissingPaymentMethod: stripe.String("pause"),
			},
		},
	}
	_, err := g.client.API.V1Subscriptions.Update(ctx, subscriptionID, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to extend subscription trial").
			WithReportableDetails(map[string]any{
				"subscription_id": subscriptionID,
				"trial_end":       trialEnd,
			}).
			Mark(ierr.ErrSystem)
	}
	g.logger.Infow("extended subscription trial",
		"subscription_id", subscriptionID,
		"trial_end", trialEnd)
	return nil
}

func (g *gateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripe.SubscriptionCancelParams{
		Prorate: stripe.Bool(false),
	}
	_, err := g.client.API.V1Subscriptions.Cancel(ctx, subscriptionID, params)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to cancel subscription").
			WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
			Mark(ierr.ErrSystem)
	}
	g.logger.Infow("cancelled subscription", "subscription_id", subscriptionID)
	return nil
}

func (g *gateway) CreateSubscription(ctx context.Context, customerID, priceID string) (string, error) {
	params := &stripe.SubscriptionCreateParams{
		Customer: stripe.String(customerID),
		Items: []*stripe.SubscriptionCreateItemParams{
			{Price: stripe.String(priceID)},
		},
	}
	sub, err := g.client.API.V1Subscriptions.Create(ctx, params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to create subscription").
			WithReportableDetails(map[string]any{
				"customer_id": customerID,
				"price_id":    priceID,
			}).
			Mark(ierr.ErrSystem)
	}
	g.logger.Infow("created subscription",
		"subscription_id", sub.ID,
		"customer_id", customerID,
		"price_id", priceID)
	return sub.ID, nil
}

func (g *gateway) MarkInvoiceUncollectible(ctx context.Context, invoiceID string) error {
	_, err := g.client.API.V1Invoices.MarkUncollectible(ctx, invoiceID, &stripe.InvoiceMarkUncollectibleParams{})
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to mark invoice uncollectible").
			WithReportableDetails(map[string]any{"invoice_id": invoiceID}).
			Mark(ierr.ErrSystem)
	}
	return nil
}

func (g *gateway) RetrieveSchedule(ctx context.Context, scheduleID string) (*stripe.SubscriptionSchedule, error) {
	schedule, err := g.client.API.V1SubscriptionSchedules.Retrieve(ctx, scheduleID, nil)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to retrieve subscription schedule").
			WithReportableDetails(map[string]any{"schedule_id": scheduleID}).
			Mark(ierr.ErrSystem)
	}
	return schedule, nil
}

func (g *gateway) RetrieveSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	sub, err := g.client.API.V1Subscriptions.Retrieve(ctx, subscriptionID, nil)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to retrieve subscription").
			WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
			Mark(ierr.ErrSystem)
	}
	return sub, nil
}

func (g *gateway) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	params := &stripe.CustomerCreateParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			"user_id": userID,
		},
	}
	customer, err := g.client.API.V1Customers.Create(ctx, params)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to create customer").
			WithReportableDetails(map[string]any{"user_id": userID}).
			Mark(ierr.ErrSystem)
	}
	g.logger.Infow("created stripe customer",
		"customer_id", customer.ID,
		"user_id", userID)
	return customer.ID, nil
}

func (g *gateway) CreateCheckoutSession(ctx context.Context, spec *interfaces.CheckoutSessionSpec) (*interfaces.CheckoutSession, error) {
	params := &stripe.CheckoutSessionCreateParams{
		Mode:     stripe.String("subscription"),
		Customer: stripe.String(spec.CustomerID),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				Price:    stripe.String(spec.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(spec.SuccessURL),
		CancelURL:  stripe.String(spec.CancelURL),
	}
	if spec.PaymentMethodCollection != "" {
		params.PaymentMethodCollection = stripe.String(spec.PaymentMethodCollection)
	}
	if spec.TrialPeriodDays != nil && *spec.TrialPeriodDays > 0 {
		params.SubscriptionData = &stripe.CheckoutSessionCreateSubscriptionDataParams{
			TrialPeriodDays: stripe.Int64(*spec.TrialPeriodDays),
			TrialSettings: &stripe.CheckoutSessionCreateSubscriptionDataTrialSettingsParams{
				EndBehavior: &stripe.CheckoutSessionCreateSubscriptionDataTrialSettingsEndBehaviorParams{
					MissingPaymentMethod: stripe.String("pause"),
				},
			},
		}
	}
	session, err := g.client.API.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create checkout session").
			WithReportableDetails(map[string]any{
				"customer_id": spec.CustomerID,
				"price_id":    spec.PriceID,
			}).
			Mark(ierr.ErrSystem)
	}
	return &interfaces.CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (g *gateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (*interfaces.PortalSession, error) {
	params := &stripe.BillingPortalSessionCreateParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	if g.client.cfg.PortalConfigurationID != "" {
		params.Configuration = stripe.String(g.client.cfg.PortalConfigurationID)
	}
	session, err := g.client.API.V1BillingPortalSessions.Create(ctx, params)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create billing portal session").
			WithReportableDetails(map[string]any{"customer_id": customerID}).
			Mark(ierr.ErrSystem)
	}
	return &interfaces.PortalSession{ID: session.ID, URL: session.URL}, nil
}
