package webhook

import (
	"context"
	"encoding/json"

	ierr "github.com/quillworks/billing/internal/errors"
	"github.com/quillworks/billing/internal/logger"
	"github.com/quillworks/billing/internal/service"
	"github.com/quillworks/billing/internal/types"
	stripeapi "github.com/stripe/stripe-go/v82"
)

// Handler dispatches Stripe webhook events to the entitlement reconciler
type Handler struct {
	syncSvc service.EntitlementSyncService
	logger  *logger.Logger
}

func NewHandler(syncSvc service.EntitlementSyncService, logger *logger.Logger) *Handler {
	return &Handler{
		syncSvc: syncSvc,
		logger:  logger,
	}
}

// HandleWebhookEvent processes a verified Stripe webhook event. Unhandled
// event types are not an error.
func (h *Handler) HandleWebhookEvent(ctx context.Context, event *stripeapi.Event) error {
	h.logger.Infow("processing Stripe webhook event",
		"event_id", event.ID,
		"event_type", event.Type,
	)

	switch string(event.Type) {
	case string(types.WebhookEventTypeSubscriptionCreated):
		sub, err := parseSubscription(event)
		if err != nil {
			return err
		}
		return h.syncSvc.HandleSubscriptionCreated(ctx, sub)
	case string(types.WebhookEventTypeSubscriptionUpdated):
		sub, err := parseSubscription(event)
		if err != nil {
			return err
		}
		return h.syncSvc.HandleSubscriptionUpdated(ctx, sub, previousTrialEnd(event))
	case string(types.WebhookEventTypeSubscriptionDeleted):
		sub, err := parseSubscription(event)
		if err != nil {
			return err
		}
		return h.syncSvc.HandleSubscriptionDeleted(ctx, sub)
	case string(types.WebhookEventTypeSubscriptionPaused):
		sub, err := parseSubscription(event)
		if err != nil {
			return err
		}
		return h.syncSvc.HandleSubscriptionPaused(ctx, sub)
	default:
		h.logger.Infow("unhandled Stripe webhook event type", "type", event.Type)
		return nil
	}
}

func parseSubscription(event *stripeapi.Event) (*stripeapi.Subscription, error) {
	var sub stripeapi.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid subscription data in webhook").
			WithReportableDetails(map[string]any{"event_id": event.ID}).
			Mark(ierr.ErrValidation)
	}
	return &sub, nil
}

// previousTrialEnd extracts the pre-update trial_end from the event's
// previous attributes. Zero means trial_end did not change (or was null).
func previousTrialEnd(event *stripeapi.Event) int64 {
	raw, ok := event.Data.PreviousAttributes["trial_end"]
	if !ok || raw == nil {
		return 0
	}
	// previous_attributes is decoded as generic JSON, numbers are float64
	switch v := raw.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	default:
		return 0
	}
}
