package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quillworks/billing/internal/api"
	v1 "github.com/quillworks/billing/internal/api/v1"
	"github.com/quillworks/billing/internal/config"
	stripeintg "github.com/quillworks/billing/internal/integration/stripe"
	"github.com/quillworks/billing/internal/integration/stripe/webhook"
	"github.com/quillworks/billing/internal/logger"
	"github.com/quillworks/billing/internal/postgres"
	"github.com/quillworks/billing/internal/repository"
	"github.com/quillworks/billing/internal/service"
	"go.uber.org/fx"
)

// @title Quillworks Billing API
// @version 1.0
// @description Subscription entitlement service
// @BasePath /v1
// @schemes http https

func init() {
	// UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewClient,

			// Repositories
			repository.NewPlanRepository,
			repository.NewEntitlementRepository,

			// Stripe
			stripeintg.NewClient,
			stripeintg.NewGateway,

			// Services
			service.NewServiceParams,
			service.NewPlanService,
			service.NewEntitlementService,
			service.NewEntitlementSyncService,
			service.NewCheckoutService,
			service.NewPortalService,

			// Webhook dispatch
			webhook.NewHandler,

			// API
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideHandlers(
	client *stripeintg.Client,
	webhookHandler *webhook.Handler,
	checkoutSvc service.CheckoutService,
	portalSvc service.PortalService,
	entitlementSvc service.EntitlementService,
	planSvc service.PlanService,
	log *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Health:      v1.NewHealthHandler(),
		Webhook:     v1.NewWebhookHandler(client, webhookHandler, log),
		Checkout:    v1.NewCheckoutHandler(checkoutSvc, log),
		Portal:      v1.NewPortalHandler(portalSvc, log),
		Entitlement: v1.NewEntitlementHandler(entitlementSvc, log),
		Plan:        v1.NewPlanHandler(planSvc, log),
	}
}

func startServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
