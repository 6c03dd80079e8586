package models

// ReservationSourceType says where a reservation row's quantity came from
type ReservationSourceType string

const (
	SourceTypeMaterial  ReservationSourceType = "PBV2_MATERIAL"
	SourceTypeComponent ReservationSourceType = "PBV2_COMPONENT"
	SourceTypeManual    ReservationSourceType = "MANUAL"
)

// ReservationStatus is the two-state lifecycle of a reservation row: RESERVED -> RELEASED
type ReservationStatus string

const (
	ReservationReserved ReservationStatus = "RESERVED"
	ReservationReleased ReservationStatus = "RELEASED"
)

// InventoryReservationRow is one ledger row. Rows are never deleted; releasing flips Status.
// ID and timestamps are assigned by persistence and ignored by the mapper.
type InventoryReservationRow struct {
	ID              string                `json:"id,omitempty"`
	OrganizationID  string                `json:"organizationId"`
	OrderID         string                `json:"orderId"`
	OrderLineItemID *string               `json:"orderLineItemId,omitempty"`
	SourceType      ReservationSourceType `json:"sourceType"`
	SourceKey       string                `json:"sourceKey"`
	UOM             string                `json:"uom"`
	Qty             string                `json:"qty"`
	Status          ReservationStatus     `json:"status"`
	CreatedByUserID *string               `json:"createdByUserId,omitempty"`
	CreatedAt       string                `json:"createdAt,omitempty"`
	UpdatedAt       string                `json:"updatedAt,omitempty"`
}

// ReservationKey identifies the active reservation slot for a row
type ReservationKey struct {
	SourceType ReservationSourceType
	SourceKey  string
	UOM        string
}

func (r InventoryReservationRow) Key() ReservationKey {
	return ReservationKey{SourceType: r.SourceType, SourceKey: r.SourceKey, UOM: r.UOM}
}

// ReservationBreakdown is the per-source-type share of a view item
type ReservationBreakdown struct {
	SourceType ReservationSourceType `json:"sourceType"`
	Qty        string                `json:"qty"`
}

// ReservationViewItem groups reservations by (sourceKey, uom)
type ReservationViewItem struct {
	SourceKey string                 `json:"sourceKey"`
	UOM       string                 `json:"uom"`
	Qty       string                 `json:"qty"`
	Breakdown []ReservationBreakdown `json:"breakdown"`
}

// ReservationRollupView is the response of GET /orders/:orderId/reservations/rollup
// Example response:
// {
//   "items": [
//     {"sourceKey": "MAT-A", "uom": "EA", "qty": "3.30",
//      "breakdown": [{"sourceType": "PBV2_MATERIAL", "qty": "3.30"}]}
//   ]
// }
type ReservationRollupView struct {
	Items []ReservationViewItem `json:"items"`
}

// ReserveOrderResponse is returned by POST /orders/:orderId/reservations
type ReserveOrderResponse struct {
	OrderID         string                    `json:"orderId"`
	Inserted        []InventoryReservationRow `json:"inserted"`
	AlreadyReserved int                       `json:"alreadyReserved"`
	Warnings        []RollupWarning           `json:"warnings"`
}

// ReleaseOrderResponse is returned by POST /orders/:orderId/reservations/release
type ReleaseOrderResponse struct {
	OrderID  string                    `json:"orderId"`
	Released []InventoryReservationRow `json:"released"`
}

// ReconcileOrderResponse is returned by POST /orders/:orderId/reservations/reconcile
type ReconcileOrderResponse struct {
	OrderID  string                    `json:"orderId"`
	Inserted []InventoryReservationRow `json:"inserted"`
	Released []InventoryReservationRow `json:"released"`
	Warnings []RollupWarning           `json:"warnings"`
}
