package types

// WebhookEventType is the type of a Stripe webhook event we consume.
// Any other event type is acknowledged and ignored.
type WebhookEventType string

const (
	WebhookEventTypeSubscriptionCreated WebhookEventType = "customer.subscription.created"
	WebhookEventTypeSubscriptionUpdated WebhookEventType = "customer.subscription.updated"
	WebhookEventTypeSubscriptionDeleted WebhookEventType = "customer.subscription.deleted"
	WebhookEventTypeSubscriptionPaused  WebhookEventType = "customer.subscription.paused"
)
