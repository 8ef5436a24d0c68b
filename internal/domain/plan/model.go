package plan

import (
	"time"

	"github.com/quillworks/billing/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is a locally configured offering mapped to a Stripe price/product
// pair. Only active plans are eligible for resolution; the downgrade target
// is the plan a subscription is moved to when payment collection fails.
type Plan struct {
	ID                     string              `db:"id" json:"id" gorm:"primaryKey"`
	Title                  string              `db:"title" json:"title"`
	Description            string              `db:"description" json:"description"`
	PriceID                string              `db:"price_id" json:"price_id" gorm:"index:idx_plans_price_product"`
	ProductID              string              `db:"product_id" json:"product_id" gorm:"index:idx_plans_price_product"`
	IsActive               bool                `db:"is_active" json:"is_active"`
	TrialPeriodDays        *int64              `db:"trial_period_days" json:"trial_period_days"`
	DowngradePlanID        *string             `db:"downgrade_plan_id" json:"downgrade_plan_id"`
	UnitAmount             decimal.Decimal     `db:"unit_amount" json:"unit_amount" gorm:"type:numeric"`
	Currency               string              `db:"currency" json:"currency"`
	RecurringInterval      types.BillingPeriod `db:"recurring_interval" json:"recurring_interval"`
	RecurringIntervalCount int                 `db:"recurring_interval_count" json:"recurring_interval_count"`
	IntervalWordsLimit     *int64              `db:"interval_words_limit" json:"interval_words_limit"`
	CreatedAt              time.Time           `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time           `db:"updated_at" json:"updated_at"`

	// Downgrade is the resolved downgrade target, populated by the
	// repository on lookup (active plans only; the foreign key above is
	// preserved even when the target is inactive).
	Downgrade *Plan `db:"-" json:"downgrade_plan,omitempty" gorm:"-"`
}

func (Plan) TableName() string {
	return "plans"
}

// IsFree reports whether the plan collects no payment
func (p *Plan) IsFree() bool {
	return p.UnitAmount.IsZero()
}
