package service

import (
	"context"

	"pricing-rollup/models"
)

// OrderRef scopes a call to one order of one organization; UserID is the acting user, if known
type OrderRef struct {
	OrganizationID string
	OrderID        string
	UserID         *string
}

// RollupServiceInterface defines the contract for building order rollups
type RollupServiceInterface interface {
	BuildRollup(ctx context.Context, ref OrderRef) (*models.OrderRollup, error)
}

// ReservationServiceInterface defines the contract for the inventory reservation lifecycle
type ReservationServiceInterface interface {
	// Reserve inserts RESERVED rows for every rollup key not already held. Calling it twice
	// inserts nothing the second time.
	Reserve(ctx context.Context, ref OrderRef) (*models.ReserveOrderResponse, error)
	// Release flips every RESERVED row of the order to RELEASED
	Release(ctx context.Context, ref OrderRef) (*models.ReleaseOrderResponse, error)
	// Reconcile re-derives reservations after line items changed: stale rows are released and
	// changed quantities are re-reserved as new rows
	Reconcile(ctx context.Context, ref OrderRef) (*models.ReconcileOrderResponse, error)
	View(ctx context.Context, ref OrderRef, status string) (*models.ReservationRollupView, error)
}

// ComponentServiceInterface defines the contract for accepting components onto line items
type ComponentServiceInterface interface {
	Accept(ctx context.Context, ref OrderRef, lineItemID string, req *models.AcceptComponentRequest) (*models.AcceptedComponent, error)
}
