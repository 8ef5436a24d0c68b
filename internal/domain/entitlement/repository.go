package entitlement

import (
	"context"
)

// Repository defines the interface for entitlement persistence. Writes are
// whole-snapshot overwrites so that replayed or reordered provider events
// converge on the most recent provider state.
type Repository interface {
	// Get returns the entitlement row for a user
	Get(ctx context.Context, userID string) (*Entitlement, error)
	// GetByCustomerID returns the entitlement row linked to a Stripe customer
	GetByCustomerID(ctx context.Context, customerID string) (*Entitlement, error)
	// UpsertCustomer creates the row for a user with only the customer id
	// set, or links the customer id to the existing row
	UpsertCustomer(ctx context.Context, userID, customerID string) error
	// ApplySnapshot overwrites the subscription-derived fields of the row
	// matching the given customer id. A missing row is not an error.
	ApplySnapshot(ctx context.Context, customerID string, snap *Snapshot) error
	// ClearSubscription nulls all subscription-derived fields on the row
	// matching the given subscription id, preserving the customer id and
	// the trial_used flag
	ClearSubscription(ctx context.Context, subscriptionID string) error
}
