package entitlement

import (
	"time"

	"github.com/quillworks/billing/internal/types"
)

// Entitlement is the local record of what a user is allowed to access,
// derived from provider subscription state. Exactly one row exists per
// user; a nil subscription id/status means "no active paid relationship".
type Entitlement struct {
	UserID             string                    `db:"user_id" json:"user_id" gorm:"column:user_id;primaryKey"`
	PlanID             *string                   `db:"plan_id" json:"plan_id"`
	StripeCustomerID   *string                   `db:"stripe_customer_id" json:"stripe_customer_id" gorm:"index"`
	SubscriptionID     *string                   `db:"subscription_id" json:"subscription_id" gorm:"index"`
	SubscriptionStatus *types.SubscriptionStatus `db:"subscription_status" json:"subscription_status"`
	CurrentPeriodStart *time.Time                `db:"current_period_start" json:"current_period_start"`
	CurrentPeriodEnd   *time.Time                `db:"current_period_end" json:"current_period_end"`
	CancelAt           *time.Time                `db:"cancel_at" json:"cancel_at"`
	TrialEnd           *time.Time                `db:"trial_end" json:"trial_end"`
	NextPeriodPlanID   *string                   `db:"next_period_plan_id" json:"next_period_plan_id"`
	TrialUsed          bool                      `db:"trial_used" json:"trial_used"`
	CreatedAt          time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time                 `db:"updated_at" json:"updated_at"`
}

func (Entitlement) TableName() string {
	return "user_entitlements"
}

// Snapshot is a full overwrite of the subscription-derived fields of an
// entitlement row, built from authoritative provider state. TrialStarted
// ratchets trial_used to true; it never clears it.
type Snapshot struct {
	PlanID             string
	SubscriptionID     string
	Status             types.SubscriptionStatus
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAt           *time.Time
	TrialEnd           *time.Time
	NextPeriodPlanID   *string
	TrialStarted       bool
}
