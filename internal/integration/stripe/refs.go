package stripe

import (
	"github.com/stripe/stripe-go/v82"
)

// Expandable references arrive as bare ids or as full objects depending on
// event expansion; these helpers normalize either form to the id.

// CustomerID returns the customer id from a subscription, or "" when unset
func CustomerID(sub *stripe.Subscription) string {
	if sub == nil || sub.Customer == nil {
		return ""
	}
	return sub.Customer.ID
}

// ItemPriceID returns the price id of the first subscription item
func ItemPriceID(sub *stripe.Subscription) string {
	item := firstItem(sub)
	if item == nil || item.Price == nil {
		return ""
	}
	return item.Price.ID
}

// ItemProductID returns the product id of the first subscription item
func ItemProductID(sub *stripe.Subscription) string {
	item := firstItem(sub)
	if item == nil || item.Price == nil || item.Price.Product == nil {
		return ""
	}
	return item.Price.Product.ID
}

// LatestInvoiceID returns the id of the subscription's latest invoice
func LatestInvoiceID(sub *stripe.Subscription) string {
	if sub == nil || sub.LatestInvoice == nil {
		return ""
	}
	return sub.LatestInvoice.ID
}

// ScheduleID returns the id of the subscription's schedule, or "" when the
// subscription has no schedule attached
func ScheduleID(sub *stripe.Subscription) string {
	if sub == nil || sub.Schedule == nil {
		return ""
	}
	return sub.Schedule.ID
}

// PhasePriceID returns the price id of the first item of a schedule phase
func PhasePriceID(phase *stripe.SubscriptionSchedulePhase) string {
	if phase == nil || len(phase.Items) == 0 || phase.Items[0].Price == nil {
		return ""
	}
	return phase.Items[0].Price.ID
}

func firstItem(sub *stripe.Subscription) *stripe.SubscriptionItem {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil
	}
	return sub.Items.Data[0]
}

// ItemPeriod returns the current period bounds, which live on the
// subscription item. Zero values pass through when the item is missing.
func ItemPeriod(sub *stripe.Subscription) (start, end int64) {
	item := firstItem(sub)
	if item == nil {
		return 0, 0
	}
	return item.CurrentPeriodStart, item.CurrentPeriodEnd
}
