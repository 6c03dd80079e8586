package models

// Rollup warning codes. Warnings are non-fatal: the affected line item is left out of the
// material aggregate and the rollup still completes.
const (
	WarningSignatureMissing  = "PBV2_SNAPSHOT_SIGNATURE_MISSING"
	WarningInputsMissing     = "PBV2_SNAPSHOT_INPUTS_MISSING"
	WarningSignatureMismatch = "PBV2_SNAPSHOT_SIGNATURE_MISMATCH"

	// A verified snapshot whose materials cannot all be read (bad entry, blank skuRef)
	WarningMaterialsInvalid = "PBV2_SNAPSHOT_MATERIALS_INVALID"
	// A quantity, or an order total, larger than the NUMERIC(18,4) range
	WarningQuantityOutOfRange = "PBV2_QUANTITY_OUT_OF_RANGE"
)

// OrderLineItem is a line item as loaded for rollup: its id and decoded snapshot (nil if none)
type OrderLineItem struct {
	ID       string           `json:"id"`
	OrderID  string           `json:"orderId"`
	Snapshot *PricingSnapshot `json:"snapshot,omitempty"`
}

// RollupWarning is a data-quality problem found while building a rollup
type RollupWarning struct {
	Code       string  `json:"code"`
	Message    string  `json:"message"`
	LineItemID *string `json:"lineItemId,omitempty"`
}

// MaterialSource is a single line item/node contribution to a material aggregate
type MaterialSource struct {
	LineItemID   string `json:"lineItemId"`
	SourceNodeID string `json:"sourceNodeId"`
	Qty          string `json:"qty"`
}

// MaterialAggregate is one row per distinct (skuRef, uom) across the order
type MaterialAggregate struct {
	SkuRef  string           `json:"skuRef"`
	UOM     string           `json:"uom"`
	Qty     string           `json:"qty"`
	Sources []MaterialSource `json:"sources"`
}

// OrderRollup is the response of GET /orders/:orderId/rollup.
// Field names and ordering are a stability contract for clients that diff or cache it.
// Example response:
// {
//   "orderId": "ord_1",
//   "materials": [
//     {"skuRef": "MAT-A", "uom": "EA", "qty": "3.3",
//      "sources": [{"lineItemId": "li_1", "sourceNodeId": "n1", "qty": "1.1"},
//                  {"lineItemId": "li_1", "sourceNodeId": "n2", "qty": "2.2"}]}
//   ],
//   "components": [],
//   "warnings": [{"code": "PBV2_SNAPSHOT_SIGNATURE_MISMATCH", "message": "...", "lineItemId": "li_2"}]
// }
type OrderRollup struct {
	OrderID    string               `json:"orderId"`
	Materials  []MaterialAggregate  `json:"materials"`
	Components []ComponentAggregate `json:"components"`
	Warnings   []RollupWarning      `json:"warnings"`
}
