package webhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/quillworks/billing/internal/domain/entitlement"
	"github.com/quillworks/billing/internal/domain/plan"
	"github.com/quillworks/billing/internal/service"
	"github.com/quillworks/billing/internal/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripeapi "github.com/stripe/stripe-go/v82"
)

func newTestHandler(t *testing.T) (*Handler, *testutil.InMemoryEntitlementStore, *testutil.FakeBillingGateway) {
	t.Helper()

	planStore := testutil.NewInMemoryPlanStore()
	planStore.AddPlan(&plan.Plan{
		ID:        "plan_pro",
		PriceID:   "price_pro",
		ProductID: "prod_pro",
		IsActive:  true,
	})

	entStore := testutil.NewInMemoryEntitlementStore()
	entStore.AddRow(&entitlement.Entitlement{
		UserID:           "user_1",
		StripeCustomerID: lo.ToPtr("cus_1"),
	})

	billing := testutil.NewFakeBillingGateway()
	syncSvc := service.NewEntitlementSyncService(service.ServiceParams{
		Logger:          testutil.GetLogger(),
		EntitlementRepo: entStore,
		PlanRepo:        planStore,
		Billing:         billing,
	})

	return NewHandler(syncSvc, testutil.GetLogger()), entStore, billing
}

func subscriptionEvent(t *testing.T, eventType string, prevAttrs map[string]interface{}) *stripeapi.Event {
	t.Helper()

	now := time.Now().Unix()
	raw, err := json.Marshal(map[string]interface{}{
		"id":       "sub_123",
		"status":   "active",
		"customer": "cus_1",
		"items": map[string]interface{}{
			"data": []map[string]interface{}{{
				"price": map[string]interface{}{
					"id":      "price_pro",
					"product": "prod_pro",
				},
				"current_period_start": now,
				"current_period_end":   now + 30*86400,
			}},
		},
	})
	require.NoError(t, err)

	return &stripeapi.Event{
		ID:   "evt_1",
		Type: stripeapi.EventType(eventType),
		Data: &stripeapi.EventData{
			Raw:                raw,
			PreviousAttributes: prevAttrs,
		},
	}
}

func TestHandleWebhookEventCreated(t *testing.T) {
	handler, entStore, _ := newTestHandler(t)

	event := subscriptionEvent(t, "customer.subscription.created", nil)
	require.NoError(t, handler.HandleWebhookEvent(context.Background(), event))

	row, err := entStore.Get(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Equal(t, "sub_123", *row.SubscriptionID)
	assert.Equal(t, "plan_pro", *row.PlanID)
}

func TestHandleWebhookEventDeleted(t *testing.T) {
	handler, entStore, _ := newTestHandler(t)

	created := subscriptionEvent(t, "customer.subscription.created", nil)
	require.NoError(t, handler.HandleWebhookEvent(context.Background(), created))

	deleted := subscriptionEvent(t, "customer.subscription.deleted", nil)
	require.NoError(t, handler.HandleWebhookEvent(context.Background(), deleted))

	row, err := entStore.Get(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Nil(t, row.SubscriptionID)
	assert.Equal(t, "cus_1", *row.StripeCustomerID)
}

func TestHandleWebhookEventIgnoresUnknownTypes(t *testing.T) {
	handler, entStore, _ := newTestHandler(t)

	event := subscriptionEvent(t, "invoice.payment_succeeded", nil)
	require.NoError(t, handler.HandleWebhookEvent(context.Background(), event))

	row, err := entStore.Get(context.Background(), "user_1")
	require.NoError(t, err)
	assert.Nil(t, row.SubscriptionID)
}

func TestPreviousTrialEnd(t *testing.T) {
	event := subscriptionEvent(t, "customer.subscription.updated", map[string]interface{}{
		"trial_end": float64(1_700_000_000),
	})
	assert.Equal(t, int64(1_700_000_000), previousTrialEnd(event))

	assert.Equal(t, int64(0), previousTrialEnd(subscriptionEvent(t, "customer.subscription.updated", nil)))
	assert.Equal(t, int64(0), previousTrialEnd(subscriptionEvent(t, "customer.subscription.updated", map[string]interface{}{
		"trial_end": nil,
	})))
}
