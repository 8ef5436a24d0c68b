package testutil

import (
	"context"

	"github.com/quillworks/billing/internal/config"
	"github.com/quillworks/billing/internal/logger"
	"github.com/stretchr/testify/suite"
)

// Stores holds the in-memory repositories used by service tests
type Stores struct {
	PlanRepo        *InMemoryPlanStore
	EntitlementRepo *InMemoryEntitlementStore
}

// BaseServiceTestSuite provides fresh stores, a recording billing gateway,
// and a quiet logger for every test
type BaseServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	stores  Stores
	billing *FakeBillingGateway
	logger  *logger.Logger
	config  *config.Configuration
}

// SetupTest initializes fresh state before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.stores = Stores{
		PlanRepo:        NewInMemoryPlanStore(),
		EntitlementRepo: NewInMemoryEntitlementStore(),
	}
	s.billing = NewFakeBillingGateway()
	s.logger = GetLogger()
	s.config = config.GetDefaultConfig()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

func (s *BaseServiceTestSuite) GetBilling() *FakeBillingGateway {
	return s.billing
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}
