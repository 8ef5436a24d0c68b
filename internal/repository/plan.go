package repository

import (
	"context"
	"errors"

	"github.com/quillworks/billing/internal/domain/plan"
	ierr "github.com/quillworks/billing/internal/errors"
	"github.com/quillworks/billing/internal/logger"
	"gorm.io/gorm"
)

type planRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanRepository(db *gorm.DB, log *logger.Logger) plan.Repository {
	return &planRepository{db: db, log: log}
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	var p plan.Plan
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("plan not found").
				WithHint("No active plan exists with this id").
				WithReportableDetails(map[string]any{"plan_id": id}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch plan").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *planRepository) GetByPriceProduct(ctx context.Context, priceID, productID string) (*plan.Plan, error) {
	var plans []*plan.Plan
	err := r.db.WithContext(ctx).
		Where("price_id = ? AND product_id = ? AND is_active = ?", priceID, productID, true).
		Find(&plans).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch plan by price and product").
			Mark(ierr.ErrDatabase)
	}
	if len(plans) == 0 {
		return nil, ierr.NewError("plan not found").
			WithHint("No active plan matches this price and product pair").
			WithReportableDetails(map[string]any{
				"price_id":   priceID,
				"product_id": productID,
			}).
			Mark(ierr.ErrNotFound)
	}
	// The pair is expected to be unique among active plans; more than one
	// match means the catalog is misconfigured and resolution must not
	// guess.
	if len(plans) > 1 {
		return nil, ierr.NewError("ambiguous plan mapping").
			WithHint("Multiple active plans match this price and product pair").
			WithReportableDetails(map[string]any{
				"price_id":   priceID,
				"product_id": productID,
				"matches":    len(plans),
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	p := plans[0]
	if p.DowngradePlanID != nil {
		dg, err := r.Get(ctx, *p.DowngradePlanID)
		if err != nil {
			if !ierr.IsNotFound(err) {
				return nil, err
			}
			// Inactive or deleted downgrade target; keep the foreign key
			// but leave the resolved plan empty.
			r.log.Warnw("downgrade plan not resolvable",
				"plan_id", p.ID,
				"downgrade_plan_id", *p.DowngradePlanID)
		} else {
			p.Downgrade = dg
		}
	}
	return p, nil
}

func (r *planRepository) GetByPriceID(ctx context.Context, priceID string) (*plan.Plan, error) {
	var p plan.Plan
	err := r.db.WithContext(ctx).
		Where("price_id = ? AND is_active = ?", priceID, true).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.NewError("plan not found").
				WithHint("No active plan exists with this price id").
				WithReportableDetails(map[string]any{"price_id": priceID}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch plan by price id").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *planRepository) ListActive(ctx context.Context) ([]*plan.Plan, error) {
	var plans []*plan.Plan
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("unit_amount ASC").
		Find(&plans).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list plans").
			Mark(ierr.ErrDatabase)
	}
	return plans, nil
}
