package dto

import (
	"github.com/quillworks/billing/internal/domain/plan"
	"github.com/quillworks/billing/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// PlanResponse is the catalog view of a plan
type PlanResponse struct {
	ID                     string              `json:"id"`
	Title                  string              `json:"title"`
	Description            string              `json:"description"`
	UnitAmount             decimal.Decimal     `json:"unit_amount"`
	Currency               string              `json:"currency"`
	RecurringInterval      types.BillingPeriod `json:"recurring_interval"`
	RecurringIntervalCount int                 `json:"recurring_interval_count"`
	TrialPeriodDays        *int64              `json:"trial_period_days"`
	IntervalWordsLimit     *int64              `json:"interval_words_limit"`
}

func NewPlanResponse(p *plan.Plan) *PlanResponse {
	return &PlanResponse{
		ID:                     p.ID,
		Title:                  p.Title,
		Description:            p.Description,
		UnitAmount:             p.UnitAmount,
		Currency:               p.Currency,
		RecurringInterval:      p.RecurringInterval,
		RecurringIntervalCount: p.RecurringIntervalCount,
		TrialPeriodDays:        p.TrialPeriodDays,
		IntervalWordsLimit:     p.IntervalWordsLimit,
	}
}

// ListPlansResponse wraps the plan catalog
type ListPlansResponse struct {
	Items []*PlanResponse `json:"items"`
	Total int             `json:"total"`
}

func NewListPlansResponse(plans []*plan.Plan) *ListPlansResponse {
	items := lo.Map(plans, func(p *plan.Plan, _ int) *PlanResponse {
		return NewPlanResponse(p)
	})
	return &ListPlansResponse{Items: items, Total: len(items)}
}
