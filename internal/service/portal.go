package service

import (
	"context"

	ierr "github.com/quillworks/billing/internal/errors"
	"github.com/quillworks/billing/internal/interfaces"
)

// PortalService opens the provider-hosted billing portal for a user.
type PortalService interface {
	CreateSession(ctx context.Context, userID, returnURL string) (*interfaces.PortalSession, error)
}

type portalService struct {
	ServiceParams
}

func NewPortalService(params ServiceParams) PortalService {
	return &portalService{ServiceParams: params}
}

func (s *portalService) CreateSession(ctx context.Context, userID, returnURL string) (*interfaces.PortalSession, error) {
	ent, err := s.EntitlementRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ent.StripeCustomerID == nil || *ent.StripeCustomerID == "" {
		return nil, ierr.NewError("no billing account for user").
			WithHint("The user has never started a checkout").
			WithReportableDetails(map[string]any{"user_id": userID}).
			Mark(ierr.ErrNotFound)
	}
	if returnURL == "" {
		returnURL = s.Config.Stripe.DefaultSuccessURL
	}
	session, err := s.Billing.CreatePortalSession(ctx, *ent.StripeCustomerID, returnURL)
	if err != nil {
		return nil, err
	}
	s.Logger.Infow("created billing portal session",
		"session_id", session.ID,
		"user_id", userID,
		"customer_id", *ent.StripeCustomerID)
	return session, nil
}
