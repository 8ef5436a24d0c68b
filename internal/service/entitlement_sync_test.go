package service

import (
	"testing"
	"time"

	"github.com/quillworks/billing/internal/domain/entitlement"
	"github.com/quillworks/billing/internal/domain/plan"
	"github.com/quillworks/billing/internal/testutil"
	"github.com/quillworks/billing/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
)

type EntitlementSyncServiceSuite struct {
	testutil.BaseServiceTestSuite
	service EntitlementSyncService
}

func TestEntitlementSyncService(t *testing.T) {
	suite.Run(t, new(EntitlementSyncServiceSuite))
}

func (s *EntitlementSyncServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.service = NewEntitlementSyncService(ServiceParams{
		Logger:          s.GetLogger(),
		Config:          s.GetConfig(),
		EntitlementRepo: stores.EntitlementRepo,
		PlanRepo:        stores.PlanRepo,
		Billing:         s.GetBilling(),
	})

	s.seedCatalog()
	s.seedUser()
}

// plan_free is the downgrade target of plan_pro
func (s *EntitlementSyncServiceSuite) seedCatalog() {
	s.GetStores().PlanRepo.AddPlan(&plan.Plan{
		ID:        "plan_free",
		Title:     "Free",
		PriceID:   "price_free",
		ProductID: "prod_free",
		IsActive:  true,
	})
	s.GetStores().PlanRepo.AddPlan(&plan.Plan{
		ID:              "plan_pro",
		Title:           "Pro",
		PriceID:         "price_pro",
		ProductID:       "prod_pro",
		IsActive:        true,
		TrialPeriodDays: lo.ToPtr(int64(14)),
		DowngradePlanID: lo.ToPtr("plan_free"),
	})
	s.GetStores().PlanRepo.AddPlan(&plan.Plan{
		ID:        "plan_team",
		Title:     "Team",
		PriceID:   "price_team",
		ProductID: "prod_team",
		IsActive:  true,
	})
}

func (s *EntitlementSyncServiceSuite) seedUser() {
	s.GetStores().EntitlementRepo.AddRow(&entitlement.Entitlement{
		UserID:           "user_1",
		StripeCustomerID: lo.ToPtr("cus_1"),
	})
}

func (s *EntitlementSyncServiceSuite) newSubscription(mods ...func(*stripe.Subscription)) *stripe.Subscription {
	now := time.Now().Unix()
	sub := &stripe.Subscription{
		ID:       "sub_123",
		Status:   stripe.SubscriptionStatusActive,
		Customer: &stripe.Customer{ID: "cus_1"},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{
				Price: &stripe.Price{
					ID:      "price_pro",
					Product: &stripe.Product{ID: "prod_pro"},
				},
				CurrentPeriodStart: now,
				CurrentPeriodEnd:   now + 30*86400,
			}},
		},
	}
	for _, mod := range mods {
		mod(sub)
	}
	return sub
}

func (s *EntitlementSyncServiceSuite) getRow(userID string) *entitlement.Entitlement {
	row, err := s.GetStores().EntitlementRepo.Get(s.GetContext(), userID)
	s.NoError(err)
	return row
}

func (s *EntitlementSyncServiceSuite) TestCreatedWritesFullSnapshot() {
	sub := s.newSubscription()

	err := s.service.HandleSubscriptionCreated(s.GetContext(), sub)
	s.NoError(err)

	row := s.getRow("user_1")
	s.Equal("plan_pro", *row.PlanID)
	s.Equal("sub_123", *row.SubscriptionID)
	s.Equal(types.SubscriptionStatusActive, *row.SubscriptionStatus)
	s.NotNil(row.CurrentPeriodStart)
	s.NotNil(row.CurrentPeriodEnd)
	// no schedule means the next-period plan is the current one
	s.Equal("plan_pro", *row.NextPeriodPlanID)
	s.Nil(row.CancelAt)
	s.False(row.TrialUsed)
}

func (s *EntitlementSyncServiceSuite) TestCreatedUnknownPlanStopsProcessing() {
	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.Items.Data[0].Price.ID = "price_unknown"
	})

	err := s.service.HandleSubscriptionCreated(s.GetContext(), sub)
	s.Error(err)

	row := s.getRow("user_1")
	s.Nil(row.SubscriptionID)
}

func (s *EntitlementSyncServiceSuite) TestUpdatedIsIdempotent() {
	sub := s.newSubscription()

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))
	first := s.getRow("user_1")

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))
	second := s.getRow("user_1")

	s.Equal(first.PlanID, second.PlanID)
	s.Equal(first.SubscriptionID, second.SubscriptionID)
	s.Equal(first.SubscriptionStatus, second.SubscriptionStatus)
	s.Equal(first.CurrentPeriodStart, second.CurrentPeriodStart)
	s.Equal(first.CurrentPeriodEnd, second.CurrentPeriodEnd)
	s.Equal(first.NextPeriodPlanID, second.NextPeriodPlanID)
	s.Equal(first.TrialUsed, second.TrialUsed)
}

func (s *EntitlementSyncServiceSuite) TestUpdatedFreshTrialExtension() {
	trialEnd := time.Now().Unix() + 1000
	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.TrialEnd = trialEnd
	})

	before := time.Now().Unix()
	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))
	after := time.Now().Unix()

	calls := s.GetBilling().TrialExtensions
	s.Len(calls, 1)
	s.Equal("sub_123", calls[0].SubscriptionID)
	s.GreaterOrEqual(calls[0].TrialEnd, before+14*86400)
	s.LessOrEqual(calls[0].TrialEnd, after+14*86400)
}

func (s *EntitlementSyncServiceSuite) TestUpdatedFreshTrialFiresWithTrialStartPresent() {
	// provider subscriptions with a trial carry both trial_start and
	// trial_end; the snapshot write ratchets trial_used, so the policy
	// must see the pre-write value
	now := time.Now().Unix()
	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.TrialStart = now
		sub.TrialEnd = now + 1000
	})

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))

	calls := s.GetBilling().TrialExtensions
	s.Len(calls, 1)
	s.Equal("sub_123", calls[0].SubscriptionID)
	s.GreaterOrEqual(calls[0].TrialEnd, now+14*86400)

	// the ratchet still lands after the policy ran
	s.True(s.getRow("user_1").TrialUsed)
}

func (s *EntitlementSyncServiceSuite) TestUpdatedUnknownCustomerStillGetsTrialExtension() {
	// no local row means no trial was ever consumed; the extension call
	// must still go out even though the snapshot write has no row to hit
	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.Customer = &stripe.Customer{ID: "cus_unknown"}
		sub.TrialEnd = time.Now().Unix() + 1000
	})

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))
	s.Len(s.GetBilling().TrialExtensions, 1)
}

func (s *EntitlementSyncServiceSuite) TestUpdatedNoTrialWhenAlreadyUsed() {
	row := s.getRow("user_1")
	row.TrialUsed = true
	s.GetStores().EntitlementRepo.AddRow(row)

	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.TrialEnd = time.Now().Unix() + 1000
	})

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))
	s.Empty(s.GetBilling().TrialExtensions)
}

func (s *EntitlementSyncServiceSuite) TestUpdatedLeftoverTrialIsCapped() {
	row := s.getRow("user_1")
	row.TrialUsed = true
	s.GetStores().EntitlementRepo.AddRow(row)

	// 30 leftover days exceed the 14-day plan window
	prevTrialEnd := time.Now().Unix() + 30*86400
	sub := s.newSubscription()

	before := time.Now().Unix()
	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, prevTrialEnd))
	after := time.Now().Unix()

	calls := s.GetBilling().TrialExtensions
	s.Len(calls, 1)
	s.GreaterOrEqual(calls[0].TrialEnd, before+14*86400)
	s.LessOrEqual(calls[0].TrialEnd, after+14*86400)
}

func (s *EntitlementSyncServiceSuite) TestUpdatedLeftoverSmallerThanPlanWindow() {
	row := s.getRow("user_1")
	row.TrialUsed = true
	s.GetStores().EntitlementRepo.AddRow(row)

	prevTrialEnd := time.Now().Unix() + 3*86400
	sub := s.newSubscription()

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, prevTrialEnd))

	calls := s.GetBilling().TrialExtensions
	s.Len(calls, 1)
	// min(leftover, plan window) keeps the smaller leftover
	s.LessOrEqual(calls[0].TrialEnd, time.Now().Unix()+3*86400)
}

func (s *EntitlementSyncServiceSuite) TestUpdatedTrialLookupFailureAssumesUsed() {
	s.GetStores().EntitlementRepo.GetByCustomerErr = assertableErr("store down")

	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.TrialEnd = time.Now().Unix() + 1000
	})

	// the snapshot write path does not use GetByCustomerID, only the
	// trial usage lookup does; no extension may be granted
	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))
	s.Empty(s.GetBilling().TrialExtensions)
}

func (s *EntitlementSyncServiceSuite) TestUpdatedUnpaidRemediatesWithDowngrade() {
	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.Status = stripe.SubscriptionStatusUnpaid
		sub.LatestInvoice = &stripe.Invoice{ID: "in_42"}
	})

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))

	billing := s.GetBilling()
	s.Equal([]string{"in_42"}, billing.Uncollectible)
	s.Equal([]string{"sub_123"}, billing.Cancelled)
	s.Len(billing.Created, 1)
	s.Equal("cus_1", billing.Created[0].CustomerID)
	s.Equal("price_free", billing.Created[0].PriceID)

	// the unpaid status is recorded; the replacement subscription is
	// attached by its own created event, not here
	row := s.getRow("user_1")
	s.Equal(types.SubscriptionStatusUnpaid, *row.SubscriptionStatus)
	s.Equal("sub_123", *row.SubscriptionID)
}

func (s *EntitlementSyncServiceSuite) TestUpdatedUnpaidWithoutDowngradeOnlyCancels() {
	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.Status = stripe.SubscriptionStatusUnpaid
		sub.Items.Data[0].Price.ID = "price_team"
		sub.Items.Data[0].Price.Product.ID = "prod_team"
	})

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))

	billing := s.GetBilling()
	s.Equal([]string{"sub_123"}, billing.Cancelled)
	s.Empty(billing.Created)
}

func (s *EntitlementSyncServiceSuite) TestRemediationInvoiceFailureDoesNotBlockCancel() {
	s.GetBilling().MarkInvoiceErr = assertableErr("invoice api down")

	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.Status = stripe.SubscriptionStatusUnpaid
		sub.LatestInvoice = &stripe.Invoice{ID: "in_42"}
	})

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))
	s.Equal([]string{"sub_123"}, s.GetBilling().Cancelled)
	s.Len(s.GetBilling().Created, 1)
}

func (s *EntitlementSyncServiceSuite) TestRemediationCancelFailureAborts() {
	s.GetBilling().CancelErr = assertableErr("cancel failed")

	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.Status = stripe.SubscriptionStatusUnpaid
	})

	err := s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0)
	s.Error(err)
	s.Empty(s.GetBilling().Created)
}

func (s *EntitlementSyncServiceSuite) TestPausedRemediatesDirectly() {
	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.Status = stripe.SubscriptionStatusPaused
		sub.TrialEnd = time.Now().Unix() + 1000
	})

	s.NoError(s.service.HandleSubscriptionPaused(s.GetContext(), sub))

	billing := s.GetBilling()
	s.Equal([]string{"sub_123"}, billing.Cancelled)
	s.Len(billing.Created, 1)
	// paused never consults the trial rules
	s.Empty(billing.TrialExtensions)
}

func (s *EntitlementSyncServiceSuite) TestDeletedClearsButKeepsCustomerAndTrialUsed() {
	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.TrialStart = time.Now().Unix() - 86400
	})
	s.NoError(s.service.HandleSubscriptionCreated(s.GetContext(), sub))
	s.True(s.getRow("user_1").TrialUsed)

	s.NoError(s.service.HandleSubscriptionDeleted(s.GetContext(), sub))

	row := s.getRow("user_1")
	s.Equal("cus_1", *row.StripeCustomerID)
	s.True(row.TrialUsed)
	s.Nil(row.PlanID)
	s.Nil(row.SubscriptionID)
	s.Nil(row.SubscriptionStatus)
	s.Nil(row.CurrentPeriodStart)
	s.Nil(row.CurrentPeriodEnd)
	s.Nil(row.CancelAt)
	s.Nil(row.TrialEnd)
	s.Nil(row.NextPeriodPlanID)
}

func (s *EntitlementSyncServiceSuite) TestDeletedMatchesBySubscriptionID() {
	// the customer already carries a replacement subscription
	replacement := s.newSubscription(func(sub *stripe.Subscription) {
		sub.ID = "sub_replacement"
	})
	s.NoError(s.service.HandleSubscriptionCreated(s.GetContext(), replacement))

	old := s.newSubscription() // sub_123, same customer
	s.NoError(s.service.HandleSubscriptionDeleted(s.GetContext(), old))

	// the replacement row is untouched
	row := s.getRow("user_1")
	s.Equal("sub_replacement", *row.SubscriptionID)
	s.Equal("plan_pro", *row.PlanID)
}

func (s *EntitlementSyncServiceSuite) TestScheduleLookaheadResolvesFuturePhase() {
	s.GetBilling().Schedules["sched_1"] = &stripe.SubscriptionSchedule{
		ID: "sched_1",
		Phases: []*stripe.SubscriptionSchedulePhase{
			{
				StartDate: time.Now().Unix() - 86400,
				Items: []*stripe.SubscriptionSchedulePhaseItem{
					{Price: &stripe.Price{ID: "price_pro"}},
				},
			},
			{
				StartDate: time.Now().Unix() + 86400,
				Items: []*stripe.SubscriptionSchedulePhaseItem{
					{Price: &stripe.Price{ID: "price_team"}},
				},
			},
		},
	}

	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.Schedule = &stripe.SubscriptionSchedule{ID: "sched_1"}
	})

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))
	s.Equal("plan_team", *s.getRow("user_1").NextPeriodPlanID)
}

func (s *EntitlementSyncServiceSuite) TestScheduleWithoutFuturePhaseKeepsCurrentPlan() {
	s.GetBilling().Schedules["sched_1"] = &stripe.SubscriptionSchedule{
		ID: "sched_1",
		Phases: []*stripe.SubscriptionSchedulePhase{
			{
				StartDate: time.Now().Unix() - 86400,
				Items: []*stripe.SubscriptionSchedulePhaseItem{
					{Price: &stripe.Price{ID: "price_pro"}},
				},
			},
		},
	}

	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.Schedule = &stripe.SubscriptionSchedule{ID: "sched_1"}
	})

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))
	s.Equal("plan_pro", *s.getRow("user_1").NextPeriodPlanID)
}

func (s *EntitlementSyncServiceSuite) TestScheduleLookupFailureFallsBackToCurrentPlan() {
	s.GetBilling().ScheduleErr = assertableErr("schedule api down")

	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.Schedule = &stripe.SubscriptionSchedule{ID: "sched_1"}
	})

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))
	s.Equal("plan_pro", *s.getRow("user_1").NextPeriodPlanID)
}

func (s *EntitlementSyncServiceSuite) TestPendingCancellationClearsNextPeriodPlan() {
	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.CancelAt = time.Now().Unix() + 10*86400
	})

	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), sub, 0))

	row := s.getRow("user_1")
	s.Nil(row.NextPeriodPlanID)
	s.NotNil(row.CancelAt)
}

func (s *EntitlementSyncServiceSuite) TestTrialUsedRatchetSurvivesLaterSnapshots() {
	withTrial := s.newSubscription(func(sub *stripe.Subscription) {
		sub.TrialStart = time.Now().Unix() - 86400
	})
	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), withTrial, 0))
	s.True(s.getRow("user_1").TrialUsed)

	withoutTrial := s.newSubscription()
	s.NoError(s.service.HandleSubscriptionUpdated(s.GetContext(), withoutTrial, 0))
	s.True(s.getRow("user_1").TrialUsed)
}

func (s *EntitlementSyncServiceSuite) TestSnapshotForUnknownCustomerIsNoOp() {
	sub := s.newSubscription(func(sub *stripe.Subscription) {
		sub.Customer = &stripe.Customer{ID: "cus_unknown"}
	})

	s.NoError(s.service.HandleSubscriptionCreated(s.GetContext(), sub))

	row := s.getRow("user_1")
	s.Nil(row.SubscriptionID)
}

type assertableErr string

func (e assertableErr) Error() string { return string(e) }
