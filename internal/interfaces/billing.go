package interfaces

import (
	"context"

	"github.com/stripe/stripe-go/v82"
)

// CheckoutSessionSpec carries the inputs for a hosted checkout session.
// PaymentMethodCollection is the provider value ("always" or
// "if_required"); free plans skip card collection.
type CheckoutSessionSpec struct {
	CustomerID              string
	PriceID                 string
	TrialPeriodDays         *int64
	PaymentMethodCollection string
	SuccessURL              string
	CancelURL               string
}

// CheckoutSession is the subset of the provider session the API returns.
type CheckoutSession struct {
	ID  string
	URL string
}

// PortalSession points a customer at the provider-hosted billing portal.
type PortalSession struct {
	ID  string
	URL string
}

// BillingGateway abstracts the billing provider's management API. Webhook
// processing and the API surface depend on this interface so that the
// reconciliation logic can be exercised without network calls.
type BillingGateway interface {
	// ExtendTrial moves the subscription's trial end to the given unix
	// timestamp, pausing collection if no payment method is on file when
	// the trial runs out.
	ExtendTrial(ctx context.Context, subscriptionID string, trialEnd int64) error
	// CancelSubscription cancels immediately without prorating.
	CancelSubscription(ctx context.Context, subscriptionID string) error
	// CreateSubscription starts a new subscription for an existing
	// customer on the given price and returns its id.
	CreateSubscription(ctx context.Context, customerID, priceID string) (string, error)
	// MarkInvoiceUncollectible writes off the invoice.
	MarkInvoiceUncollectible(ctx context.Context, invoiceID string) error
	// RetrieveSchedule fetches a subscription schedule with its phases.
	RetrieveSchedule(ctx context.Context, scheduleID string) (*stripe.SubscriptionSchedule, error)
	// RetrieveSubscription fetches current subscription state.
	RetrieveSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	// CreateCustomer registers a customer and returns its id.
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
	// CreateCheckoutSession opens a hosted checkout for a subscription.
	CreateCheckoutSession(ctx context.Context, spec *CheckoutSessionSpec) (*CheckoutSession, error)
	// CreatePortalSession opens the hosted billing portal for a customer.
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (*PortalSession, error)
}
