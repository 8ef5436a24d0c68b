package stripe

import (
	"github.com/quillworks/billing/internal/config"
	ierr "github.com/quillworks/billing/internal/errors"
	"github.com/quillworks/billing/internal/logger"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Client wraps the Stripe API client with our configuration
type Client struct {
	API    *stripe.Client
	cfg    config.StripeConfig
	logger *logger.Logger
}

// NewClient creates a configured Stripe client
func NewClient(cfg *config.Configuration, logger *logger.Logger) *Client {
	return &Client{
		API:    stripe.NewClient(cfg.Stripe.SecretKey, nil),
		cfg:    cfg.Stripe,
		logger: logger,
	}
}

// VerifyWebhookEvent validates the signature on a raw webhook payload and
// returns the parsed event
func (c *Client) VerifyWebhookEvent(payload []byte, signature string) (*stripe.Event, error) {
	options := webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.cfg.WebhookSecret, options)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Webhook signature verification failed").
			Mark(ierr.ErrPermissionDenied)
	}
	return &event, nil
}
