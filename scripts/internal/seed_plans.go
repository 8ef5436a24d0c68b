package internal

import (
	"encoding/json"
	"os"
	"time"

	"github.com/quillworks/billing/internal/config"
	"github.com/quillworks/billing/internal/domain/plan"
	"github.com/quillworks/billing/internal/logger"
	"github.com/quillworks/billing/internal/postgres"
	"github.com/quillworks/billing/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm/clause"
)

type seedPlan struct {
	ID                     string  `json:"id"`
	Title                  string  `json:"title"`
	Description            string  `json:"description"`
	PriceID                string  `json:"price_id"`
	ProductID              string  `json:"product_id"`
	IsActive               bool    `json:"is_active"`
	TrialPeriodDays        *int64  `json:"trial_period_days"`
	DowngradePlanID        *string `json:"downgrade_plan_id"`
	UnitAmount             string  `json:"unit_amount"`
	Currency               string  `json:"currency"`
	RecurringInterval      string  `json:"recurring_interval"`
	RecurringIntervalCount int     `json:"recurring_interval_count"`
	IntervalWordsLimit     *int64  `json:"interval_words_limit"`
}

// SeedPlans upserts the plan catalog from the JSON file named by
// QUILLWORKS_PLANS_FILE. Plans without an id get a generated one.
func SeedPlans() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return err
	}
	db, err := postgres.NewClient(cfg, log)
	if err != nil {
		return err
	}

	path := os.Getenv("QUILLWORKS_PLANS_FILE")
	if path == "" {
		path = "plans.json"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var seeds []seedPlan
	if err := json.Unmarshal(data, &seeds); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, seed := range seeds {
		amount, err := decimal.NewFromString(seed.UnitAmount)
		if err != nil {
			return err
		}

		id := seed.ID
		if id == "" {
			id = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN)
		}

		row := &plan.Plan{
			ID:                     id,
			Title:                  seed.Title,
			Description:            seed.Description,
			PriceID:                seed.PriceID,
			ProductID:              seed.ProductID,
			IsActive:               seed.IsActive,
			TrialPeriodDays:        seed.TrialPeriodDays,
			DowngradePlanID:        seed.DowngradePlanID,
			UnitAmount:             amount,
			Currency:               seed.Currency,
			RecurringInterval:      types.BillingPeriod(seed.RecurringInterval),
			RecurringIntervalCount: seed.RecurringIntervalCount,
			IntervalWordsLimit:     seed.IntervalWordsLimit,
			CreatedAt:              now,
			UpdatedAt:              now,
		}

		err = db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(row).Error
		if err != nil {
			return err
		}
		log.Infow("seeded plan", "plan_id", id, "title", seed.Title)
	}

	return nil
}
