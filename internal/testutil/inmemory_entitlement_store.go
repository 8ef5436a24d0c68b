package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/quillworks/billing/internal/domain/entitlement"
	ierr "github.com/quillworks/billing/internal/errors"
)

// InMemoryEntitlementStore implements entitlement.Repository for tests.
// The error knobs let a test force a specific lookup or write to fail.
type InMemoryEntitlementStore struct {
	mu   sync.RWMutex
	rows map[string]*entitlement.Entitlement

	GetByCustomerErr error
	ApplyErr         error
	ClearErr         error
}

func NewInMemoryEntitlementStore() *InMemoryEntitlementStore {
	return &InMemoryEntitlementStore{
		rows: make(map[string]*entitlement.Entitlement),
	}
}

// AddRow seeds an entitlement row
func (s *InMemoryEntitlementStore) AddRow(e *entitlement.Entitlement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.rows[e.UserID] = &cp
}

func (s *InMemoryEntitlementStore) Get(ctx context.Context, userID string) (*entitlement.Entitlement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.rows[userID]
	if !ok {
		return nil, ierr.NewError("entitlement not found").
			WithHint("No entitlement row exists for this user").
			Mark(ierr.ErrNotFound)
	}
	cp := *e
	return &cp, nil
}

func (s *InMemoryEntitlementStore) GetByCustomerID(ctx context.Context, customerID string) (*entitlement.Entitlement, error) {
	if s.GetByCustomerErr != nil {
		return nil, s.GetByCustomerErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.rows {
		if e.StripeCustomerID != nil && *e.StripeCustomerID == customerID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ierr.NewError("entitlement not found").
		WithHint("No entitlement row is linked to this customer").
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryEntitlementStore) UpsertCustomer(ctx context.Context, userID, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if e, ok := s.rows[userID]; ok {
		e.StripeCustomerID = &customerID
		e.UpdatedAt = now
		return nil
	}
	s.rows[userID] = &entitlement.Entitlement{
		UserID:           userID,
		StripeCustomerID: &customerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	return nil
}

func (s *InMemoryEntitlementStore) ApplySnapshot(ctx context.Context, customerID string, snap *entitlement.Snapshot) error {
	if s.ApplyErr != nil {
		return s.ApplyErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.rows {
		if e.StripeCustomerID == nil || *e.StripeCustomerID != customerID {
			continue
		}
		planID := snap.PlanID
		subID := snap.SubscriptionID
		status := snap.Status
		start := snap.CurrentPeriodStart
		end := snap.CurrentPeriodEnd
		e.PlanID = &planID
		e.SubscriptionID = &subID
		e.SubscriptionStatus = &status
		e.CurrentPeriodStart = &start
		e.CurrentPeriodEnd = &end
		e.CancelAt = snap.CancelAt
		e.TrialEnd = snap.TrialEnd
		e.NextPeriodPlanID = snap.NextPeriodPlanID
		if snap.TrialStarted {
			e.TrialUsed = true
		}
		e.UpdatedAt = time.Now().UTC()
	}
	// a missing row is not an error
	return nil
}

func (s *InMemoryEntitlementStore) ClearSubscription(ctx context.Context, subscriptionID string) error {
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.rows {
		if e.SubscriptionID == nil || *e.SubscriptionID != subscriptionID {
			continue
		}
		e.PlanID = nil
		e.SubscriptionID = nil
		e.SubscriptionStatus = nil
		e.CurrentPeriodStart = nil
		e.CurrentPeriodEnd = nil
		e.CancelAt = nil
		e.TrialEnd = nil
		e.NextPeriodPlanID = nil
		e.UpdatedAt = time.Now().UTC()
	}
	return nil
}
