package service

import (
	"context"

	ierr "github.com/quillworks/billing/internal/errors"
	"github.com/quillworks/billing/internal/interfaces"
)

// CheckoutService starts hosted checkout sessions, lazily provisioning the
// provider customer and the entitlement row on first use.
type CheckoutService interface {
	CreateSession(ctx context.Context, req *CheckoutRequest) (*interfaces.CheckoutSession, error)
}

// CheckoutRequest carries the authenticated caller and the plan to buy.
type CheckoutRequest struct {
	UserID     string
	UserEmail  string
	PlanID     string
	SuccessURL string
	CancelURL  string
}

type checkoutService struct {
	ServiceParams
}

func NewCheckoutService(params ServiceParams) CheckoutService {
	return &checkoutService{ServiceParams: params}
}

func (s *checkoutService) CreateSession(ctx context.Context, req *CheckoutRequest) (*interfaces.CheckoutSession, error) {
	p, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	customerID, trialUsed, err := s.resolveCustomer(ctx, req.UserID, req.UserEmail)
	if err != nil {
		return nil, err
	}

	spec := &interfaces.CheckoutSessionSpec{
		CustomerID:              customerID,
		PriceID:                 p.PriceID,
		PaymentMethodCollection: "always",
		SuccessURL:              req.SuccessURL,
		CancelURL:               req.CancelURL,
	}
	if p.IsFree() {
		spec.PaymentMethodCollection = "if_required"
	}
	// a trial is granted at most once per customer
	if p.TrialPeriodDays != nil && !trialUsed {
		spec.TrialPeriodDays = p.TrialPeriodDays
	}
	if spec.SuccessURL == "" {
		spec.SuccessURL = s.Config.Stripe.DefaultSuccessURL
	}
	if spec.CancelURL == "" {
		spec.CancelURL = s.Config.Stripe.DefaultCancelURL
	}

	session, err := s.Billing.CreateCheckoutSession(ctx, spec)
	if err != nil {
		return nil, err
	}
	s.Logger.Infow("created checkout session",
		"session_id", session.ID,
		"user_id", req.UserID,
		"customer_id", customerID,
		"plan_id", p.ID,
		"trial_days", spec.TrialPeriodDays)
	return session, nil
}

// resolveCustomer returns the caller's provider customer id, creating the
// customer and linking it to the entitlement row on first checkout.
func (s *checkoutService) resolveCustomer(ctx context.Context, userID, email string) (string, bool, error) {
	ent, err := s.EntitlementRepo.Get(ctx, userID)
	if err == nil && ent.StripeCustomerID != nil && *ent.StripeCustomerID != "" {
		return *ent.StripeCustomerID, ent.TrialUsed, nil
	}
	if err != nil && !ierr.IsNotFound(err) {
		return "", false, err
	}

	customerID, err := s.Billing.CreateCustomer(ctx, email, userID)
	if err != nil {
		return "", false, err
	}
	if err := s.EntitlementRepo.UpsertCustomer(ctx, userID, customerID); err != nil {
		return "", false, err
	}
	s.Logger.Infow("provisioned stripe customer for user",
		"user_id", userID,
		"customer_id", customerID)

	trialUsed := ent != nil && ent.TrialUsed
	return customerID, trialUsed, nil
}
