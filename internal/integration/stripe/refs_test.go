package stripe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v82"
)

func TestCustomerID(t *testing.T) {
	assert.Equal(t, "", CustomerID(nil))
	assert.Equal(t, "", CustomerID(&stripe.Subscription{}))
	assert.Equal(t, "cus_1", CustomerID(&stripe.Subscription{
		Customer: &stripe.Customer{ID: "cus_1"},
	}))
}

func TestItemRefs(t *testing.T) {
	sub := &stripe.Subscription{
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{
				Price: &stripe.Price{
					ID:      "price_1",
					Product: &stripe.Product{ID: "prod_1"},
				},
				CurrentPeriodStart: 100,
				CurrentPeriodEnd:   200,
			}},
		},
	}

	assert.Equal(t, "price_1", ItemPriceID(sub))
	assert.Equal(t, "prod_1", ItemProductID(sub))

	start, end := ItemPeriod(sub)
	assert.Equal(t, int64(100), start)
	assert.Equal(t, int64(200), end)
}

func TestItemRefsWithoutItems(t *testing.T) {
	assert.Equal(t, "", ItemPriceID(nil))
	assert.Equal(t, "", ItemProductID(&stripe.Subscription{}))

	empty := &stripe.Subscription{Items: &stripe.SubscriptionItemList{}}
	assert.Equal(t, "", ItemPriceID(empty))

	start, end := ItemPeriod(empty)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(0), end)
}

func TestInvoiceAndScheduleRefs(t *testing.T) {
	assert.Equal(t, "", LatestInvoiceID(&stripe.Subscription{}))
	assert.Equal(t, "in_1", LatestInvoiceID(&stripe.Subscription{
		LatestInvoice: &stripe.Invoice{ID: "in_1"},
	}))

	assert.Equal(t, "", ScheduleID(&stripe.Subscription{}))
	assert.Equal(t, "sched_1", ScheduleID(&stripe.Subscription{
		Schedule: &stripe.SubscriptionSchedule{ID: "sched_1"},
	}))
}

func TestPhasePriceID(t *testing.T) {
	assert.Equal(t, "", PhasePriceID(nil))
	assert.Equal(t, "", PhasePriceID(&stripe.SubscriptionSchedulePhase{}))
	assert.Equal(t, "price_2", PhasePriceID(&stripe.SubscriptionSchedulePhase{
		Items: []*stripe.SubscriptionSchedulePhaseItem{
			{Price: &stripe.Price{ID: "price_2"}},
		},
	}))
}
