package service

import (
	"github.com/quillworks/billing/internal/config"
	"github.com/quillworks/billing/internal/domain/entitlement"
	"github.com/quillworks/billing/internal/domain/plan"
	"github.com/quillworks/billing/internal/interfaces"
	"github.com/quillworks/billing/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	EntitlementRepo entitlement.Repository
	PlanRepo        plan.Repository

	Billing interfaces.BillingGateway
}

func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	entitlementRepo entitlement.Repository,
	planRepo plan.Repository,
	billing interfaces.BillingGateway,
) ServiceParams {
	return ServiceParams{
		Logger:          logger,
		Config:          config,
		EntitlementRepo: entitlementRepo,
		PlanRepo:        planRepo,
		Billing:         billing,
	}
}
