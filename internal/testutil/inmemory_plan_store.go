package testutil

import (
	"context"
	"sync"

	"github.com/quillworks/billing/internal/domain/plan"
	ierr "github.com/quillworks/billing/internal/errors"
)

// InMemoryPlanStore implements plan.Repository for tests
type InMemoryPlanStore struct {
	mu    sync.RWMutex
	plans map[string]*plan.Plan
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		plans: make(map[string]*plan.Plan),
	}
}

// AddPlan seeds a plan into the store
func (s *InMemoryPlanStore) AddPlan(p *plan.Plan) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.plans[p.ID] = &cp
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.plans[id]
	if !ok || !p.IsActive {
		return nil, ierr.NewError("plan not found").
			WithHint("No active plan exists with this id").
			Mark(ierr.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryPlanStore) GetByPriceProduct(ctx context.Context, priceID, productID string) (*plan.Plan, error) {
	s.mu.RLock()
	var matches []*plan.Plan
	for _, p := range s.plans {
		if p.IsActive && p.PriceID == priceID && p.ProductID == productID {
			matches = append(matches, p)
		}
	}
	s.mu.RUnlock()

	if len(matches) == 0 {
		return nil, ierr.NewError("plan not found").
			WithHint("No active plan matches this price and product pair").
			Mark(ierr.ErrNotFound)
	}
	if len(matches) > 1 {
		return nil, ierr.NewError("ambiguous plan mapping").
			WithHint("Multiple active plans match this price and product pair").
			Mark(ierr.ErrInvalidOperation)
	}

	cp := *matches[0]
	if cp.DowngradePlanID != nil {
		if dg, err := s.Get(ctx, *cp.DowngradePlanID); err == nil {
			cp.Downgrade = dg
		}
	}
	return &cp, nil
}

func (s *InMemoryPlanStore) GetByPriceID(ctx context.Context, priceID string) (*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.plans {
		if p.IsActive && p.PriceID == priceID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ierr.NewError("plan not found").
		WithHint("No active plan exists with this price id").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPlanStore) ListActive(ctx context.Context) ([]*plan.Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*plan.Plan
	for _, p := range s.plans {
		if p.IsActive {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}
