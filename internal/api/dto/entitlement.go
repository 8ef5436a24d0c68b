package dto

import (
	"time"

	"github.com/quillworks/billing/internal/domain/entitlement"
	"github.com/quillworks/billing/internal/types"
)

// EntitlementResponse is the caller-facing view of their entitlement row
type EntitlementResponse struct {
	UserID             string                    `json:"user_id"`
	PlanID             *string                   `json:"plan_id"`
	SubscriptionStatus *types.SubscriptionStatus `json:"subscription_status"`
	CurrentPeriodStart *time.Time                `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time                `json:"current_period_end"`
	CancelAt           *time.Time                `json:"cancel_at"`
	TrialEnd           *time.Time                `json:"trial_end"`
	NextPeriodPlanID   *string                   `json:"next_period_plan_id"`
	TrialUsed          bool                      `json:"trial_used"`
}

func NewEntitlementResponse(e *entitlement.Entitlement) *EntitlementResponse {
	return &EntitlementResponse{
		UserID:             e.UserID,
		PlanID:             e.PlanID,
		SubscriptionStatus: e.SubscriptionStatus,
		CurrentPeriodStart: e.CurrentPeriodStart,
		CurrentPeriodEnd:   e.CurrentPeriodEnd,
		CancelAt:           e.CancelAt,
		TrialEnd:           e.TrialEnd,
		NextPeriodPlanID:   e.NextPeriodPlanID,
		TrialUsed:          e.TrialUsed,
	}
}
