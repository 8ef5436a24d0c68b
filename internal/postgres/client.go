package postgres

import (
	"github.com/quillworks/billing/internal/config"
	"github.com/quillworks/billing/internal/domain/entitlement"
	"github.com/quillworks/billing/internal/domain/plan"
	ierr "github.com/quillworks/billing/internal/errors"
	"github.com/quillworks/billing/internal/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewClient opens the postgres connection used by the repositories
func NewClient(cfg *config.Configuration, log *logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}

	if cfg.Postgres.AutoMigrate {
		if err := db.AutoMigrate(&plan.Plan{}, &entitlement.Entitlement{}); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to run schema migration").
				Mark(ierr.ErrDatabase)
		}
		log.Infow("postgres schema migrated")
	}

	return db, nil
}
