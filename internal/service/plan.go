package service

import (
	"context"

	"github.com/quillworks/billing/internal/domain/plan"
	ierr "github.com/quillworks/billing/internal/errors"
	stripeintg "github.com/quillworks/billing/internal/integration/stripe"
	"github.com/stripe/stripe-go/v82"
)

// PlanService resolves locally configured plans from provider references.
type PlanService interface {
	// ResolveSubscriptionPlan returns the unique active plan matching the
	// subscription's current billing item. The error is non-retryable for
	// the event being processed.
	ResolveSubscriptionPlan(ctx context.Context, sub *stripe.Subscription) (*plan.Plan, error)
	// GetActivePlan returns the active plan with the given id
	GetActivePlan(ctx context.Context, id string) (*plan.Plan, error)
	// ListActivePlans returns the plan catalog
	ListActivePlans(ctx context.Context) ([]*plan.Plan, error)
}

type planService struct {
	ServiceParams
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{ServiceParams: params}
}

func (s *planService) ResolveSubscriptionPlan(ctx context.Context, sub *stripe.Subscription) (*plan.Plan, error) {
	priceID := stripeintg.ItemPriceID(sub)
	productID := stripeintg.ItemProductID(sub)
	if priceID == "" || productID == "" {
		return nil, ierr.NewError("subscription has no billing item").
			WithHint("Subscription carries no price or product reference").
			WithReportableDetails(map[string]any{"subscription_id": sub.ID}).
			Mark(ierr.ErrNotFound)
	}
	// price+product is the matching key: price ids can be reused across
	// products in test data, so both must agree.
	return s.PlanRepo.GetByPriceProduct(ctx, priceID, productID)
}

func (s *planService) GetActivePlan(ctx context.Context, id string) (*plan.Plan, error) {
	return s.PlanRepo.Get(ctx, id)
}

func (s *planService) ListActivePlans(ctx context.Context) ([]*plan.Plan, error) {
	return s.PlanRepo.ListActive(ctx)
}
