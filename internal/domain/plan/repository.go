package plan

import (
	"context"
)

// Repository defines the read-only interface for plan resolution.
// All lookups are restricted to active plans.
type Repository interface {
	// Get returns the active plan with the given id
	Get(ctx context.Context, id string) (*Plan, error)
	// GetByPriceProduct returns the unique active plan matching both the
	// provider price id and product id, with its downgrade target resolved
	GetByPriceProduct(ctx context.Context, priceID, productID string) (*Plan, error)
	// GetByPriceID returns the active plan matching the provider price id
	GetByPriceID(ctx context.Context, priceID string) (*Plan, error)
	// ListActive returns all active plans
	ListActive(ctx context.Context) ([]*Plan, error)
}
