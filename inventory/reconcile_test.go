package inventory

import (
	"testing"

	"pricing-rollup/models"
)

func withID(r models.InventoryReservationRow, id string) models.InventoryReservationRow {
	r.ID = id
	return r
}

func TestReconcileNoChanges(t *testing.T) {
	desired := mustBuild(t, BuildParams{OrganizationID: "org_1", OrderID: "ord_1", Rollup: sampleRollup()})
	existing := make([]models.InventoryReservationRow, 0, len(desired))
	for i, r := range desired {
		existing = append(existing, withID(r, string(rune('a'+i))))
	}

	plan := Reconcile(desired, existing)
	if !plan.Empty() {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
	if plan.Insert == nil || plan.Release == nil {
		t.Fatal("plan slices must be non-nil")
	}
}

func TestReconcileChangedQuantityAndRemovedKey(t *testing.T) {
	existing := []models.InventoryReservationRow{
		withID(row(models.SourceTypeMaterial, "MAT-A", "EA", "3.30", models.ReservationReserved), "r1"),
		withID(row(models.SourceTypeMaterial, "MAT-GONE", "EA", "1.00", models.ReservationReserved), "r2"),
		withID(row(models.SourceTypeManual, "MAT-HAND", "EA", "5.00", models.ReservationReserved), "r3"),
		withID(row(models.SourceTypeMaterial, "MAT-B", "FT", "2.00", models.ReservationReleased), "r4"),
	}
	desired := []models.InventoryReservationRow{
		row(models.SourceTypeMaterial, "MAT-A", "EA", "4.00", models.ReservationReserved),
		row(models.SourceTypeMaterial, "MAT-B", "FT", "2.00", models.ReservationReserved),
	}

	plan := Reconcile(desired, existing)

	if len(plan.Insert) != 2 {
		t.Fatalf("expected 2 inserts, got %+v", plan.Insert)
	}
	if plan.Insert[0].SourceKey != "MAT-A" || plan.Insert[0].Qty != "4.00" {
		t.Fatalf("unexpected first insert %+v", plan.Insert[0])
	}
	if plan.Insert[1].SourceKey != "MAT-B" {
		t.Fatalf("released key should be reserved again, got %+v", plan.Insert[1])
	}

	if len(plan.Release) != 2 {
		t.Fatalf("expected 2 releases, got %+v", plan.Release)
	}
	if plan.Release[0].ID != "r1" || plan.Release[1].ID != "r2" {
		t.Fatalf("unexpected releases %+v", plan.Release)
	}
	for _, r := range plan.Release {
		if r.Status != models.ReservationReleased {
			t.Fatalf("release row %s not flipped: %s", r.ID, r.Status)
		}
		if r.SourceType == models.SourceTypeManual {
			t.Fatal("manual reservations must not be released by reconcile")
		}
	}
}

func TestReconcileEquivalentQuantityStrings(t *testing.T) {
	existing := []models.InventoryReservationRow{
		withID(row(models.SourceTypeMaterial, "MAT-A", "EA", "3.3", models.ReservationReserved), "r1"),
	}
	desired := []models.InventoryReservationRow{
		row(models.SourceTypeMaterial, "MAT-A", "EA", "3.30", models.ReservationReserved),
	}
	if plan := Reconcile(desired, existing); !plan.Empty() {
		t.Fatalf("3.3 and 3.30 are the same reservation, got %+v", plan)
	}
}

func TestReconcileDuplicateActiveRows(t *testing.T) {
	existing := []models.InventoryReservationRow{
		withID(row(models.SourceTypeMaterial, "MAT-A", "EA", "1.00", models.ReservationReserved), "r1"),
		withID(row(models.SourceTypeMaterial, "MAT-A", "EA", "1.00", models.ReservationReserved), "r2"),
	}
	desired := []models.InventoryReservationRow{
		row(models.SourceTypeMaterial, "MAT-A", "EA", "1.00", models.ReservationReserved),
	}
	plan := Reconcile(desired, existing)
	if len(plan.Release) != 2 || len(plan.Insert) != 1 {
		t.Fatalf("duplicate active rows should collapse to one, got %+v", plan)
	}
}
