package service

import (
	"context"

	"github.com/quillworks/billing/internal/domain/entitlement"
)

// EntitlementService exposes the read side of the entitlement record.
type EntitlementService interface {
	GetUserEntitlement(ctx context.Context, userID string) (*entitlement.Entitlement, error)
}

type entitlementService struct {
	ServiceParams
}

func NewEntitlementService(params ServiceParams) EntitlementService {
	return &entitlementService{ServiceParams: params}
}

func (s *entitlementService) GetUserEntitlement(ctx context.Context, userID string) (*entitlement.Entitlement, error) {
	return s.EntitlementRepo.Get(ctx, userID)
}
