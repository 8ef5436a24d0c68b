package repository

import (
	"context"
	"errors"
	"time"

	"github.com/quillworks/billing/internal/domain/entitlement"
	ierr "github.com/quillworks/billing/internal/errors"
	"github.com/quillworks/billing/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type entitlementRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEntitlementRepository(db *gorm.DB, log *logger.Logger) entitlement.Repository {
	return &entitlementRepository{db: db, log: log}
}

func (r *entitlementRepository) Get(ctx context.Context, userID string) (*entitlement.Entitlement, error) {
	var e entitlement.Entitlement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("entitlement not found").
				WithHint("No entitlement row exists for this user").
				WithReportableDetails(map[string]any{"user_id": userID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch entitlement").
			Mark(ierr.ErrDatabase)
	}
	return &e, nil
}

func (r *entitlementRepository) GetByCustomerID(ctx context.Context, customerID string) (*entitlement.Entitlement, error) {
	var e entitlement.Entitlement
	err := r.db.WithContext(ctx).
		Where("stripe_customer_id = ?", customerID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("entitlement not found").
				WithHint("No entitlement row is linked to this customer").
				WithReportableDetails(map[string]any{"customer_id": customerID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch entitlement by customer id").
			Mark(ierr.ErrDatabase)
	}
	return &e, nil
}

func (r *entitlementRepository) UpsertCustomer(ctx context.Context, userID, customerID string) error {
	now := time.Now().UTC()
	row := &entitlement.Entitlement{
		UserID:           userID,
		StripeCustomerID: &customerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"stripe_customer_id": customerID,
				"updated_at":         now,
			}),
		}).
		Create(row).Error
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to link customer to user").
			WithReportableDetails(map[string]any{
				"user_id":     userID,
				"customer_id": customerID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *entitlementRepository) ApplySnapshot(ctx context.Context, customerID string, snap *entitlement.Snapshot) error {
	updates := map[string]interface{}{
		"plan_id":              snap.PlanID,
		"subscription_id":      snap.SubscriptionID,
		"subscription_status":  snap.Status,
		"current_period_start": snap.CurrentPeriodStart,
		"current_period_end":   snap.CurrentPeriodEnd,
		"cancel_at":            snap.CancelAt,
		"trial_end":            snap.TrialEnd,
		"next_period_plan_id":  snap.NextPeriodPlanID,
		"updated_at":           time.Now().UTC(),
	}
	// trial_used only ever ratchets to true
	if snap.TrialStarted {
		updates["trial_used"] = true
	}

	res := r.db.WithContext(ctx).
		Model(&entitlement.Entitlement{}).
		Where("stripe_customer_id = ?", customerID).
		Updates(updates)
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to apply subscription snapshot").
			WithReportableDetails(map[string]any{"customer_id": customerID}).
			Mark(ierr.ErrDatabase)
	}
	if res.RowsAffected == 0 {
		// Events can arrive for customers never linked to a local user,
		// e.g. test-mode subscriptions; skipping keeps webhook processing
		// idempotent.
		r.log.Warnw("snapshot skipped, no entitlement row for customer",
			"customer_id", customerID,
			"subscription_id", snap.SubscriptionID)
	}
	return nil
}

func (r *entitlementRepository) ClearSubscription(ctx context.Context, subscriptionID string) error {
	updates := map[string]interface{}{
		"plan_id":              nil,
		"subscription_id":      nil,
		"subscription_status":  nil,
		"current_period_start": nil,
		"current_period_end":   nil,
		"cancel_at":            nil,
		"trial_end":            nil,
		"next_period_plan_id":  nil,
		"updated_at":           time.Now().UTC(),
	}
	res := r.db.WithContext(ctx).
		Model(&entitlement.Entitlement{}).
		Where("subscription_id = ?", subscriptionID).
		Updates(updates)
	if res.Error != nil {
		return ierr.WithError(res.Error).
			WithHint("Failed to clear subscription state").
			WithReportableDetails(map[string]any{"subscription_id": subscriptionID}).
			Mark(ierr.ErrDatabase)
	}
	if res.RowsAffected == 0 {
		r.log.Warnw("clear skipped, no entitlement row for subscription",
			"subscription_id", subscriptionID)
	}
	return nil
}
