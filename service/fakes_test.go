package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"pricing-rollup/logger"
	"pricing-rollup/models"
	"pricing-rollup/pricing"
	"pricing-rollup/repository"
)

type fakeLineItems struct {
	orders map[string]bool
	items  []models.OrderLineItem
}

func (f *fakeLineItems) OrderExists(ctx context.Context, organizationID, orderID string) (bool, error) {
	return f.orders[organizationID+"/"+orderID], nil
}

func (f *fakeLineItems) ListByOrder(ctx context.Context, organizationID, orderID string) ([]models.OrderLineItem, error) {
	out := []models.OrderLineItem{}
	for _, li := range f.items {
		if li.OrderID == orderID {
			out = append(out, li)
		}
	}
	return out, nil
}

func (f *fakeLineItems) GetByID(ctx context.Context, organizationID, orderID, lineItemID string) (*models.OrderLineItem, error) {
	for _, li := range f.items {
		if li.OrderID == orderID && li.ID == lineItemID {
			item := li
			return &item, nil
		}
	}
	return nil, repository.ErrLineItemNotFound
}

type fakeComponents struct {
	items []models.AcceptedComponent
}

func (f *fakeComponents) ListByOrder(ctx context.Context, organizationID, orderID string) ([]models.AcceptedComponent, error) {
	return append([]models.AcceptedComponent{}, f.items...), nil
}

func (f *fakeComponents) Insert(ctx context.Context, organizationID, orderID string, c *models.AcceptedComponent, createdByUserID *string) error {
	c.ID = fmt.Sprintf("cmp_%d", len(f.items)+1)
	f.items = append(f.items, *c)
	return nil
}

type fakeTreeVersions struct {
	byID map[string]models.TreeVersionStatus
}

func (f *fakeTreeVersions) GetByID(ctx context.Context, organizationID, treeVersionID string) (*models.TreeVersion, error) {
	status, ok := f.byID[treeVersionID]
	if !ok {
		return nil, repository.ErrTreeVersionNotFound
	}
	return &models.TreeVersion{ID: treeVersionID, OrganizationID: organizationID, Status: status}, nil
}

// fakeReservations applies changes the way the SQL repository does: inserts get a fresh id,
// releases only flip rows that are still RESERVED. beforeApply runs where the SQL repository
// has just taken its locks, before fn sees the rows.
type fakeReservations struct {
	rows        []models.InventoryReservationRow
	nextID      int
	beforeApply func()
}

func (f *fakeReservations) ListByOrder(ctx context.Context, organizationID, orderID string) ([]models.InventoryReservationRow, error) {
	return append([]models.InventoryReservationRow{}, f.rows...), nil
}

func (f *fakeReservations) ApplyChanges(ctx context.Context, organizationID, orderID string, fn repository.ChangeFunc) (*repository.ReservationChanges, error) {
	if f.beforeApply != nil {
		f.beforeApply()
	}
	existing := append([]models.InventoryReservationRow{}, f.rows...)
	insert, release, err := fn(existing)
	if err != nil {
		return nil, err
	}

	changes := &repository.ReservationChanges{
		Inserted: []models.InventoryReservationRow{},
		Released: []models.InventoryReservationRow{},
	}
	for _, rel := range release {
		for i := range f.rows {
			if f.rows[i].ID == rel.ID && f.rows[i].Status == models.ReservationReserved {
				f.rows[i].Status = models.ReservationReleased
				changes.Released = append(changes.Released, f.rows[i])
			}
		}
	}
	for _, row := range insert {
		f.nextID++
		row.ID = fmt.Sprintf("res_%d", f.nextID)
		row.Status = models.ReservationReserved
		f.rows = append(f.rows, row)
		changes.Inserted = append(changes.Inserted, row)
	}
	return changes, nil
}

func (f *fakeReservations) active() []models.InventoryReservationRow {
	var out []models.InventoryReservationRow
	for _, r := range f.rows {
		if r.Status == models.ReservationReserved {
			out = append(out, r)
		}
	}
	return out
}

type fixture struct {
	lineItems    *fakeLineItems
	components   *fakeComponents
	treeVersions *fakeTreeVersions
	reservations *fakeReservations

	rollups      *RollupService
	reservation  *ReservationService
	componentSvc *ComponentService
}

func newFixture() *fixture {
	f := &fixture{
		lineItems:    &fakeLineItems{orders: map[string]bool{"org_1/ord_1": true}},
		components:   &fakeComponents{},
		treeVersions: &fakeTreeVersions{byID: map[string]models.TreeVersionStatus{"tv_pub": models.TreeVersionPublished}},
		reservations: &fakeReservations{},
	}
	log := logger.NewNop()
	f.rollups = NewRollupService(f.lineItems, f.components, f.treeVersions, log)
	f.reservation = NewReservationService(f.rollups, f.reservations, log)
	f.componentSvc = NewComponentService(f.rollups, f.components, log)
	return f
}

func ref() OrderRef {
	user := "user_1"
	return OrderRef{OrganizationID: "org_1", OrderID: "ord_1", UserID: &user}
}

func mat(sku, qty string) models.SnapshotMaterial {
	return models.SnapshotMaterial{SkuRef: sku, UOM: "EA", Qty: decimal.RequireFromString(qty), SourceNodeID: "n_" + sku}
}

func signedItem(t *testing.T, id, treeVersionID string, materials ...models.SnapshotMaterial) models.OrderLineItem {
	t.Helper()
	snap := &models.PricingSnapshot{
		TreeVersionID:      &treeVersionID,
		ExplicitSelections: map[string]any{"finish": "gloss"},
		Env:                map[string]any{"quantity": 1},
		Materials:          materials,
	}
	if err := pricing.SignSnapshot(snap); err != nil {
		t.Fatalf("SignSnapshot: %v", err)
	}
	return models.OrderLineItem{ID: id, OrderID: "ord_1", Snapshot: snap}
}
