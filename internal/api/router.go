package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/quillworks/billing/internal/api/v1"
	"github.com/quillworks/billing/internal/config"
	"github.com/quillworks/billing/internal/logger"
	"github.com/quillworks/billing/internal/rest/middleware"
)

type Handlers struct {
	Health      *v1.HealthHandler
	Webhook     *v1.WebhookHandler
	Checkout    *v1.CheckoutHandler
	Portal      *v1.PortalHandler
	Entitlement *v1.EntitlementHandler
	Plan        *v1.PlanHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")

	// Webhooks authenticate by signature, not bearer token
	webhooks := v1Group.Group("/webhooks")
	{
		webhooks.POST("/stripe", handlers.Webhook.HandleStripeWebhook)
	}

	// Plan catalog is public
	v1Group.GET("/plans", handlers.Plan.ListPlans)

	authenticated := v1Group.Group("")
	authenticated.Use(middleware.AuthenticateMiddleware(cfg, logger))
	{
		authenticated.POST("/checkout/sessions", handlers.Checkout.CreateSession)
		authenticated.POST("/portal/sessions", handlers.Portal.CreateSession)
		authenticated.GET("/entitlements/me", handlers.Entitlement.GetMyEntitlement)
	}

	return router
}
