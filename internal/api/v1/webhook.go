package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	stripeintg "github.com/quillworks/billing/internal/integration/stripe"
	"github.com/quillworks/billing/internal/integration/stripe/webhook"
	"github.com/quillworks/billing/internal/logger"
)

// WebhookHandler receives Stripe webhook deliveries
type WebhookHandler struct {
	client  *stripeintg.Client
	handler *webhook.Handler
	logger  *logger.Logger
}

func NewWebhookHandler(client *stripeintg.Client, handler *webhook.Handler, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		client:  client,
		handler: handler,
		logger:  logger,
	}
}

// @Summary Handle Stripe webhook events
// @Description Verifies the signature and reconciles subscription lifecycle events
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe webhook signature"
// @Success 200 {object} map[string]interface{} "Event acknowledged"
// @Failure 400 {object} map[string]interface{} "Missing or invalid signature"
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.logger.Errorw("failed to read webhook request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		h.logger.Errorw("missing Stripe-Signature header")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing Stripe-Signature header",
		})
		return
	}

	event, err := h.client.VerifyWebhookEvent(body, signature)
	if err != nil {
		h.logger.Errorw("failed to verify webhook signature", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to verify webhook signature",
		})
		return
	}

	// Processing failures are acknowledged anyway: Stripe redelivery would
	// only replay the same failure, and the next lifecycle event for the
	// subscription re-derives full state.
	if err := h.handler.HandleWebhookEvent(c.Request.Context(), event); err != nil {
		h.logger.Errorw("failed to process webhook event",
			"event_id", event.ID,
			"event_type", event.Type,
			"error", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"received": true,
		"event_id": event.ID,
	})
}
