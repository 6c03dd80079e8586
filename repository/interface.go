package repository

import (
	"context"
	"errors"

	"pricing-rollup/models"
)

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrLineItemNotFound    = errors.New("line item not found")
	ErrTreeVersionNotFound = errors.New("tree version not found")
)

// LineItemRepositoryInterface defines the contract for reading order line items and their snapshots
type LineItemRepositoryInterface interface {
	OrderExists(ctx context.Context, organizationID, orderID string) (bool, error)
	ListByOrder(ctx context.Context, organizationID, orderID string) ([]models.OrderLineItem, error)
	GetByID(ctx context.Context, organizationID, orderID, lineItemID string) (*models.OrderLineItem, error)
}

// ComponentRepositoryInterface defines the contract for accepted component operations
type ComponentRepositoryInterface interface {
	ListByOrder(ctx context.Context, organizationID, orderID string) ([]models.AcceptedComponent, error)
	Insert(ctx context.Context, organizationID, orderID string, component *models.AcceptedComponent, createdByUserID *string) error
}

// TreeVersionRepositoryInterface defines the contract for reading pricing tree versions
type TreeVersionRepositoryInterface interface {
	GetByID(ctx context.Context, organizationID, treeVersionID string) (*models.TreeVersion, error)
}

// ChangeFunc receives the order's current reservation rows (any status) and returns the rows to
// insert and the rows to flip to RELEASED. It runs inside the transaction that will apply them,
// after the order's line items are locked, so it is where the desired rows should be computed.
type ChangeFunc func(existing []models.InventoryReservationRow) (insert, release []models.InventoryReservationRow, err error)

// ReservationChanges is what ApplyChanges actually wrote
type ReservationChanges struct {
	Inserted []models.InventoryReservationRow
	Released []models.InventoryReservationRow
}

// ReservationRepositoryInterface defines the contract for the inventory reservation ledger
type ReservationRepositoryInterface interface {
	ListByOrder(ctx context.Context, organizationID, orderID string) ([]models.InventoryReservationRow, error)
	ApplyChanges(ctx context.Context, organizationID, orderID string, fn ChangeFunc) (*ReservationChanges, error)
}
