package service

import (
	"context"
	"time"

	"github.com/quillworks/billing/internal/domain/entitlement"
	"github.com/quillworks/billing/internal/domain/plan"
	ierr "github.com/quillworks/billing/internal/errors"
	stripeintg "github.com/quillworks/billing/internal/integration/stripe"
	"github.com/quillworks/billing/internal/types"
	"github.com/stripe/stripe-go/v82"
)

// EntitlementSyncService reconciles provider subscription lifecycle events
// into the local entitlement record. Every write is a snapshot overwrite
// derived from the event's authoritative subscription state, so replayed
// and reordered deliveries converge.
type EntitlementSyncService interface {
	HandleSubscriptionCreated(ctx context.Context, sub *stripe.Subscription) error
	// HandleSubscriptionUpdated takes the pre-update trial_end from the
	// event's previous attributes (zero when trial_end did not change).
	HandleSubscriptionUpdated(ctx context.Context, sub *stripe.Subscription, prevTrialEnd int64) error
	HandleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error
	HandleSubscriptionPaused(ctx context.Context, sub *stripe.Subscription) error
}

type entitlementSyncService struct {
	ServiceParams
	planService PlanService
}

func NewEntitlementSyncService(params ServiceParams) EntitlementSyncService {
	return &entitlementSyncService{
		ServiceParams: params,
		planService:   NewPlanService(params),
	}
}

// HandleSubscriptionCreated writes the full snapshot for a new
// subscription. Remediation relies on this path: the replacement
// subscription it creates is attached to the entitlement here, not inside
// remediation itself.
func (s *entitlementSyncService) HandleSubscriptionCreated(ctx context.Context, sub *stripe.Subscription) error {
	p, err := s.planService.ResolveSubscriptionPlan(ctx, sub)
	if err != nil {
		return err
	}
	customerID := stripeintg.CustomerID(sub)
	snap := s.buildSnapshot(ctx, sub, p)
	if err := s.EntitlementRepo.ApplySnapshot(ctx, customerID, snap); err != nil {
		return err
	}
	s.Logger.Infow("entitlement created from subscription",
		"subscription_id", sub.ID,
		"customer_id", customerID,
		"plan_id", p.ID,
		"status", sub.Status)
	return nil
}

func (s *entitlementSyncService) HandleSubscriptionUpdated(ctx context.Context, sub *stripe.Subscription, prevTrialEnd int64) error {
	p, err := s.planService.ResolveSubscriptionPlan(ctx, sub)
	if err != nil {
		return err
	}
	customerID := stripeintg.CustomerID(sub)

	// Sample trial usage before the snapshot write: the write ratchets
	// trial_used as soon as the subscription carries a trial_start, and
	// the policy must see the pre-event value.
	trialUsed := s.trialUsed(ctx, customerID)

	snap := s.buildSnapshot(ctx, sub, p)
	if err := s.EntitlementRepo.ApplySnapshot(ctx, customerID, snap); err != nil {
		return err
	}

	decision := EvaluateTrialPolicy(&TrialContext{
		Status:        types.SubscriptionStatus(sub.Status),
		TrialEnd:      sub.TrialEnd,
		PrevTrialEnd:  prevTrialEnd,
		TrialUsed:     trialUsed,
		PlanTrialDays: p.TrialPeriodDays,
	}, time.Now())

	switch decision.Action {
	case TrialActionRemediate:
		return s.remediate(ctx, sub, p)
	case TrialActionExtend:
		trialEnd := time.Now().Unix() + decision.ExtendSeconds
		if err := s.Billing.ExtendTrial(ctx, sub.ID, trialEnd); err != nil {
			return err
		}
		s.Logger.Infow("reinstated trial after plan change",
			"subscription_id", sub.ID,
			"customer_id", customerID,
			"extend_seconds", decision.ExtendSeconds)
	}
	return nil
}

// HandleSubscriptionDeleted clears the subscription-derived fields,
// matched by subscription id: by the time this event arrives a
// replacement subscription may already be attached to the same customer,
// and that row must not be wiped.
func (s *entitlementSyncService) HandleSubscriptionDeleted(ctx context.Context, sub *stripe.Subscription) error {
	if err := s.EntitlementRepo.ClearSubscription(ctx, sub.ID); err != nil {
		return err
	}
	s.Logger.Infow("entitlement cleared for deleted subscription",
		"subscription_id", sub.ID,
		"customer_id", stripeintg.CustomerID(sub))
	return nil
}

// HandleSubscriptionPaused fires when a trial ends with no payment method
// on file; it goes straight to remediation without consulting trial rules.
func (s *entitlementSyncService) HandleSubscriptionPaused(ctx context.Context, sub *stripe.Subscription) error {
	p, err := s.planService.ResolveSubscriptionPlan(ctx, sub)
	if err != nil {
		return err
	}
	return s.remediate(ctx, sub, p)
}

// remediate handles a subscription confirmed unrecoverable: write off the
// open invoice, cancel without proration, and recreate on the downgrade
// plan. The entitlement row is deliberately not written here; the created
// event for the replacement does that, so the deleted event for the old
// subscription cannot clobber it.
func (s *entitlementSyncService) remediate(ctx context.Context, sub *stripe.Subscription, p *plan.Plan) error {
	customerID := stripeintg.CustomerID(sub)
	s.Logger.Warnw("remediating unrecoverable subscription",
		"subscription_id", sub.ID,
		"customer_id", customerID,
		"status", sub.Status,
		"plan_id", p.ID)

	if invoiceID := stripeintg.LatestInvoiceID(sub); invoiceID != "" {
		if err := s.Billing.MarkInvoiceUncollectible(ctx, invoiceID); err != nil {
			// best-effort; the cancel below is what matters
			s.Logger.Warnw("failed to mark invoice uncollectible",
				"invoice_id", invoiceID,
				"subscription_id", sub.ID,
				"error", err)
		}
	}

	if err := s.Billing.CancelSubscription(ctx, sub.ID); err != nil {
		return err
	}

	if p.Downgrade == nil {
		s.Logger.Infow("no downgrade plan configured, leaving user without subscription",
			"subscription_id", sub.ID,
			"customer_id", customerID,
			"plan_id", p.ID)
		return nil
	}

	newSubID, err := s.Billing.CreateSubscription(ctx, customerID, p.Downgrade.PriceID)
	if err != nil {
		return err
	}
	s.Logger.Infow("created downgrade subscription",
		"old_subscription_id", sub.ID,
		"new_subscription_id", newSubID,
		"customer_id", customerID,
		"downgrade_plan_id", p.Downgrade.ID)
	return nil
}

// trialUsed reports whether the customer has ever consumed a trial. A
// missing row means no trial was ever consumed; any other lookup failure
// counts as used so a storage blip can never hand out a second trial.
func (s *entitlementSyncService) trialUsed(ctx context.Context, customerID string) bool {
	ent, err := s.EntitlementRepo.GetByCustomerID(ctx, customerID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return false
		}
		s.Logger.Warnw("trial usage lookup failed, assuming used",
			"customer_id", customerID,
			"error", err)
		return true
	}
	return ent.TrialUsed
}

func (s *entitlementSyncService) buildSnapshot(ctx context.Context, sub *stripe.Subscription, p *plan.Plan) *entitlement.Snapshot {
	periodStart, periodEnd := stripeintg.ItemPeriod(sub)
	snap := &entitlement.Snapshot{
		PlanID:             p.ID,
		SubscriptionID:     sub.ID,
		Status:             types.SubscriptionStatus(sub.Status),
		CurrentPeriodStart: time.Unix(periodStart, 0).UTC(),
		CurrentPeriodEnd:   time.Unix(periodEnd, 0).UTC(),
		NextPeriodPlanID:   s.nextPeriodPlanID(ctx, sub, p),
		TrialStarted:       sub.TrialStart != 0,
	}
	if sub.CancelAt != 0 {
		t := time.Unix(sub.CancelAt, 0).UTC()
		snap.CancelAt = &t
	}
	if sub.TrialEnd != 0 {
		t := time.Unix(sub.TrialEnd, 0).UTC()
		snap.TrialEnd = &t
	}
	return snap
}

// nextPeriodPlanID inspects the forward schedule to find the plan that
// will be active next period. Every failure path falls back to the current
// plan id rather than leaving the field stale; a wrong value is corrected
// by the next update event.
func (s *entitlementSyncService) nextPeriodPlanID(ctx context.Context, sub *stripe.Subscription, current *plan.Plan) *string {
	if sub.CancelAt != 0 {
		return nil
	}
	scheduleID := stripeintg.ScheduleID(sub)
	if scheduleID == "" {
		return &current.ID
	}

	schedule, err := s.Billing.RetrieveSchedule(ctx, scheduleID)
	if err != nil {
		s.Logger.Warnw("schedule lookup failed, keeping current plan as next",
			"schedule_id", scheduleID,
			"subscription_id", sub.ID,
			"error", err)
		return &current.ID
	}

	now := time.Now().Unix()
	for _, phase := range schedule.Phases {
		if phase.StartDate <= now {
			continue
		}
		priceID := stripeintg.PhasePriceID(phase)
		if priceID == "" {
			break
		}
		next, err := s.PlanRepo.GetByPriceID(ctx, priceID)
		if err != nil {
			s.Logger.Warnw("next-phase plan not resolvable, keeping current plan as next",
				"schedule_id", scheduleID,
				"price_id", priceID,
				"error", err)
			break
		}
		return &next.ID
	}
	return &current.ID
}
