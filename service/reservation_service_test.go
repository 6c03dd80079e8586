package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"pricing-rollup/apierr"
	"pricing-rollup/models"
	"pricing-rollup/pricing"
)

func TestBuildRollupUnknownOrder(t *testing.T) {
	f := newFixture()
	_, err := f.rollups.BuildRollup(context.Background(), OrderRef{OrganizationID: "org_2", OrderID: "ord_1"})
	e, ok := apierr.As(err)
	if !ok || e.Status != http.StatusNotFound || e.Code != CodeOrderNotFound {
		t.Fatalf("expected 404 %s, got %v", CodeOrderNotFound, err)
	}
}

func TestBuildRollupReportsStaleLineItem(t *testing.T) {
	f := newFixture()
	stale := signedItem(t, "li_2", "tv_pub", mat("MAT-B", "5"))
	stale.Snapshot.Env = map[string]any{"quantity": 2}
	f.lineItems.items = []models.OrderLineItem{signedItem(t, "li_1", "tv_pub", mat("MAT-A", "1.5")), stale}

	rollup, err := f.rollups.BuildRollup(context.Background(), ref())
	if err != nil {
		t.Fatalf("BuildRollup: %v", err)
	}
	if len(rollup.Materials) != 1 || rollup.Materials[0].SkuRef != "MAT-A" {
		t.Fatalf("unexpected materials %+v", rollup.Materials)
	}
	if len(rollup.Warnings) != 1 || rollup.Warnings[0].Code != models.WarningSignatureMismatch {
		t.Fatalf("unexpected warnings %+v", rollup.Warnings)
	}
}

func TestReserveTwiceInsertsOnce(t *testing.T) {
	f := newFixture()
	f.lineItems.items = []models.OrderLineItem{
		signedItem(t, "li_1", "tv_pub", mat("MAT-A", "1.1"), mat("MAT-B", "2")),
	}
	f.components.items = []models.AcceptedComponent{{
		Kind: models.ComponentKindInlineSku, SkuRef: strPtr("GROMMET"), Title: "Grommets",
		Qty: decimal.RequireFromString("4"), LineItemID: "li_1",
	}}

	first, err := f.reservation.Reserve(context.Background(), ref())
	if err != nil {
		t.Fatalf("first Reserve: %v", err)
	}
	if len(first.Inserted) != 3 || first.AlreadyReserved != 0 {
		t.Fatalf("first Reserve = %+v", first)
	}
	for _, r := range first.Inserted {
		if r.CreatedByUserID == nil || *r.CreatedByUserID != "user_1" {
			t.Fatalf("row %s missing acting user", r.SourceKey)
		}
	}

	second, err := f.reservation.Reserve(context.Background(), ref())
	if err != nil {
		t.Fatalf("second Reserve: %v", err)
	}
	if len(second.Inserted) != 0 || second.AlreadyReserved != 3 {
		t.Fatalf("second Reserve = %+v", second)
	}
	if got := len(f.reservations.active()); got != 3 {
		t.Fatalf("expected 3 active rows, got %d", got)
	}
}

func TestReserveBlockedByDraftTreeVersion(t *testing.T) {
	f := newFixture()
	f.treeVersions.byID["tv_draft"] = models.TreeVersionDraft
	f.lineItems.items = []models.OrderLineItem{
		signedItem(t, "li_1", "tv_pub", mat("MAT-A", "1")),
		signedItem(t, "li_2", "tv_draft", mat("MAT-B", "1")),
	}

	_, err := f.reservation.Reserve(context.Background(), ref())
	e, ok := apierr.As(err)
	if !ok {
		t.Fatalf("expected *apierr.Error, got %v", err)
	}
	if e.Status != http.StatusConflict || e.Code != pricing.CodeTreeVersionDraft || e.Context != string(pricing.GuardPersist) {
		t.Fatalf("unexpected error %+v", e)
	}
	if len(f.reservations.rows) != 0 {
		t.Fatalf("nothing should be written, got %+v", f.reservations.rows)
	}
}

func TestReserveReadsLineItemsUnderLock(t *testing.T) {
	f := newFixture()
	f.lineItems.items = []models.OrderLineItem{signedItem(t, "li_1", "tv_pub", mat("MAT-A", "1"))}
	f.reservations.beforeApply = func() {
		// repriced by another request that committed before the locks were granted
		f.lineItems.items = []models.OrderLineItem{signedItem(t, "li_1", "tv_pub", mat("MAT-A", "7"))}
	}

	resp, err := f.reservation.Reserve(context.Background(), ref())
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if len(resp.Inserted) != 1 || resp.Inserted[0].Qty != "7.00" {
		t.Fatalf("reserved from a stale read: %+v", resp.Inserted)
	}
}

func TestReconcileReadsLineItemsUnderLock(t *testing.T) {
	f := newFixture()
	f.lineItems.items = []models.OrderLineItem{signedItem(t, "li_1", "tv_pub", mat("MAT-A", "1"))}
	if _, err := f.reservation.Reserve(context.Background(), ref()); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	f.reservations.beforeApply = func() {
		f.lineItems.items = []models.OrderLineItem{signedItem(t, "li_1", "tv_draft", mat("MAT-A", "2"))}
	}
	f.treeVersions.byID["tv_draft"] = models.TreeVersionDraft

	_, err := f.reservation.Reconcile(context.Background(), ref())
	if e, ok := apierr.As(err); !ok || e.Context != string(pricing.GuardRecompute) {
		t.Fatalf("expected the draft guard to see the locked state, got %v", err)
	}
	if len(f.reservations.active()) != 1 || f.reservations.active()[0].Qty != "1.00" {
		t.Fatalf("ledger changed: %+v", f.reservations.rows)
	}
}

func TestReserveQuantityOutOfRange(t *testing.T) {
	f := newFixture()
	f.lineItems.items = []models.OrderLineItem{
		{ID: "li_1", OrderID: "ord_1"},
		{ID: "li_2", OrderID: "ord_1"},
	}
	sku := "GROMMET"
	f.components.items = []models.AcceptedComponent{
		{Kind: models.ComponentKindInlineSku, SkuRef: &sku, Title: "Grommets", Qty: decimal.RequireFromString("60000000000000"), LineItemID: "li_1"},
		{Kind: models.ComponentKindInlineSku, SkuRef: &sku, Title: "Grommets", Qty: decimal.RequireFromString("60000000000000"), LineItemID: "li_2"},
	}

	_, err := f.reservation.Reserve(context.Background(), ref())
	e, ok := apierr.As(err)
	if !ok || e.Status != http.StatusUnprocessableEntity || e.Code != CodeQuantityOutOfRange {
		t.Fatalf("expected 422 %s, got %v", CodeQuantityOutOfRange, err)
	}
	if len(f.reservations.rows) != 0 {
		t.Fatalf("nothing should be written, got %+v", f.reservations.rows)
	}
}

func TestReserveUnknownTreeVersionPasses(t *testing.T) {
	f := newFixture()
	f.lineItems.items = []models.OrderLineItem{signedItem(t, "li_1", "tv_missing", mat("MAT-A", "1"))}

	resp, err := f.reservation.Reserve(context.Background(), ref())
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if len(resp.Inserted) != 1 {
		t.Fatalf("expected one row, got %+v", resp.Inserted)
	}
}

func TestReleaseThenReserveAgain(t *testing.T) {
	f := newFixture()
	f.lineItems.items = []models.OrderLineItem{signedItem(t, "li_1", "tv_pub", mat("MAT-A", "1"), mat("MAT-B", "2"))}
	f.reservations.rows = []models.InventoryReservationRow{{
		ID: "manual_1", OrganizationID: "org_1", OrderID: "ord_1",
		SourceType: models.SourceTypeManual, SourceKey: "MAT-HAND", UOM: "EA", Qty: "1.00",
		Status: models.ReservationReserved,
	}}

	if _, err := f.reservation.Reserve(context.Background(), ref()); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	released, err := f.reservation.Release(context.Background(), ref())
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if len(released.Released) != 3 {
		t.Fatalf("expected every RESERVED row released, got %+v", released.Released)
	}
	if len(f.reservations.active()) != 0 {
		t.Fatalf("rows still active: %+v", f.reservations.active())
	}

	again, err := f.reservation.Reserve(context.Background(), ref())
	if err != nil {
		t.Fatalf("Reserve after release: %v", err)
	}
	if len(again.Inserted) != 2 {
		t.Fatalf("released keys should be reservable again, got %+v", again.Inserted)
	}
	if len(f.reservations.rows) != 5 {
		t.Fatalf("ledger should only grow, got %d rows", len(f.reservations.rows))
	}
}

func TestReconcileAfterLineItemChanges(t *testing.T) {
	f := newFixture()
	f.lineItems.items = []models.OrderLineItem{
		signedItem(t, "li_1", "tv_pub", mat("MAT-A", "1")),
		signedItem(t, "li_2", "tv_pub", mat("MAT-B", "2")),
	}
	if _, err := f.reservation.Reserve(context.Background(), ref()); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	// li_2 deleted, li_1 repriced
	f.lineItems.items = []models.OrderLineItem{signedItem(t, "li_1", "tv_pub", mat("MAT-A", "3"))}

	resp, err := f.reservation.Reconcile(context.Background(), ref())
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(resp.Released) != 2 {
		t.Fatalf("expected MAT-A and MAT-B released, got %+v", resp.Released)
	}
	if len(resp.Inserted) != 1 || resp.Inserted[0].SourceKey != "MAT-A" || resp.Inserted[0].Qty != "3.00" {
		t.Fatalf("unexpected inserts %+v", resp.Inserted)
	}

	again, err := f.reservation.Reconcile(context.Background(), ref())
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	if len(again.Inserted) != 0 || len(again.Released) != 0 {
		t.Fatalf("reconcile should settle, got %+v", again)
	}
}

func TestReconcileBlockedByDraft(t *testing.T) {
	f := newFixture()
	f.treeVersions.byID["tv_draft"] = models.TreeVersionDraft
	f.lineItems.items = []models.OrderLineItem{signedItem(t, "li_1", "tv_draft", mat("MAT-A", "1"))}

	_, err := f.reservation.Reconcile(context.Background(), ref())
	e, ok := apierr.As(err)
	if !ok || e.Context != string(pricing.GuardRecompute) {
		t.Fatalf("expected recompute conflict, got %v", err)
	}
}

func TestView(t *testing.T) {
	f := newFixture()
	f.lineItems.items = []models.OrderLineItem{signedItem(t, "li_1", "tv_pub", mat("MAT-A", "1.1"), mat("MAT-A", "2.2"))}
	if _, err := f.reservation.Reserve(context.Background(), ref()); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	view, err := f.reservation.View(context.Background(), ref(), "")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Qty != "3.30" {
		t.Fatalf("unexpected view %+v", view)
	}

	released, err := f.reservation.View(context.Background(), ref(), "released")
	if err != nil {
		t.Fatalf("View released: %v", err)
	}
	if len(released.Items) != 0 {
		t.Fatalf("nothing released yet, got %+v", released)
	}

	_, err = f.reservation.View(context.Background(), ref(), "PENDING")
	e, ok := apierr.As(err)
	if !ok || e.Status != http.StatusBadRequest || e.Code != CodeInvalidArgument {
		t.Fatalf("expected 400 for unknown status, got %v", err)
	}
}

func TestReleaseUnknownOrder(t *testing.T) {
	f := newFixture()
	_, err := f.reservation.Release(context.Background(), OrderRef{OrganizationID: "org_1", OrderID: "ord_404"})
	if e, ok := apierr.As(err); !ok || e.Status != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Fatal("not-found error should wrap the repository sentinel")
	}
}

func strPtr(s string) *string { return &s }
