package repository

import (
	"database/sql"
	"fmt"
	"testing"

	"pricing-rollup/models"
)

type fakeRow struct {
	values []any
}

func (f fakeRow) Scan(dest ...any) error {
	if len(dest) != len(f.values) {
		return fmt.Errorf("scan: got %d destinations for %d values", len(dest), len(f.values))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = f.values[i].(string)
		case *sql.NullString:
			if f.values[i] == nil {
				*p = sql.NullString{}
			} else {
				*p = sql.NullString{String: f.values[i].(string), Valid: true}
			}
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

func TestScanReservation(t *testing.T) {
	row, err := scanReservation(fakeRow{values: []any{
		"4b0c6c1e-0000-4000-8000-000000000001", "org_1", "ord_1", "li_1",
		"PBV2_MATERIAL", "MAT-A", "EA", "3.3000",
		"RESERVED", nil, "2026-01-15T10:30:00Z", "2026-01-15T10:30:00Z",
	}})
	if err != nil {
		t.Fatalf("scanReservation: %v", err)
	}
	if row.Qty != "3.30" {
		t.Fatalf("qty = %q, want 3.30", row.Qty)
	}
	if row.SourceType != models.SourceTypeMaterial || row.Status != models.ReservationReserved {
		t.Fatalf("unexpected enums %+v", row)
	}
	if row.OrderLineItemID == nil || *row.OrderLineItemID != "li_1" {
		t.Fatalf("orderLineItemId = %v", row.OrderLineItemID)
	}
	if row.CreatedByUserID != nil {
		t.Fatalf("createdByUserId should be nil, got %v", *row.CreatedByUserID)
	}
}

func TestNullHelpers(t *testing.T) {
	if ptrNullString(nil).Valid {
		t.Fatal("nil pointer should be NULL")
	}
	s := "x"
	if got := nullStringPtr(ptrNullString(&s)); got == nil || *got != "x" {
		t.Fatalf("string round trip = %v", got)
	}
	n := int64(1250)
	if got := nullInt64Ptr(ptrNullInt64(&n)); got == nil || *got != 1250 {
		t.Fatalf("int64 round trip = %v", got)
	}
	if nullInt64Ptr(sql.NullInt64{}) != nil {
		t.Fatal("NULL should map to nil")
	}
}
