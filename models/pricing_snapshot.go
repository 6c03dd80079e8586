package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// PricingSnapshot is the frozen pricing record stored on a line item (pbv2_snapshot_json).
// Optional fields are nil when absent or null in the stored JSON.
// Example:
// {
//   "treeVersionId": "tv_7",
//   "explicitSelections": {"finish": "matte"},
//   "env": {"widthIn": 24, "heightIn": 36, "quantity": 10},
//   "materials": [{"skuRef": "MAT-A", "uom": "EA", "qty": 1.1, "sourceNodeId": "n1"}],
//   "inputSignature": "9f2c..."
// }
type PricingSnapshot struct {
	TreeVersionID      *string            `json:"treeVersionId,omitempty"`
	ExplicitSelections map[string]any     `json:"explicitSelections,omitempty"`
	Env                map[string]any     `json:"env,omitempty"`
	Materials          []SnapshotMaterial `json:"materials"`
	InputSignature     *string            `json:"inputSignature,omitempty"`

	// SkippedMaterials counts material entries that could not be decoded. A materials value
	// that is not an array counts as one.
	SkippedMaterials int `json:"-"`
}

// SnapshotMaterial is one raw material usage contributed by a line item.
// Qty accepts a JSON number or a decimal string.
type SnapshotMaterial struct {
	SkuRef       string          `json:"skuRef"`
	UOM          string          `json:"uom"`
	Qty          decimal.Decimal `json:"qty"`
	SourceNodeID string          `json:"sourceNodeId"`
}

// HasInputs reports whether all three signed inputs are present
func (s *PricingSnapshot) HasInputs() bool {
	return s != nil && s.TreeVersionID != nil && s.ExplicitSelections != nil && s.Env != nil
}

// DecodePricingSnapshot parses stored snapshot JSON. Empty input or a JSON null yields nil.
// Each field is decoded on its own: a field with the wrong shape is treated as absent, and a
// malformed material entry is dropped and counted in SkippedMaterials, so one bad value never
// hides the rest of the snapshot and the loss stays visible to the rollup.
// Only a top-level value that is not an object is an error.
func DecodePricingSnapshot(raw []byte) (*PricingSnapshot, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("snapshot is not a JSON object: %w", err)
	}

	snap := &PricingSnapshot{}

	var treeVersionID string
	if decodeField(fields["treeVersionId"], &treeVersionID) {
		snap.TreeVersionID = &treeVersionID
	}
	var signature string
	if decodeField(fields["inputSignature"], &signature) && signature != "" {
		snap.InputSignature = &signature
	}

	var selections map[string]any
	if decodeNumbers(fields["explicitSelections"], &selections) && selections != nil {
		snap.ExplicitSelections = selections
	}
	var env map[string]any
	if decodeNumbers(fields["env"], &env) && env != nil {
		snap.Env = env
	}

	if raw, ok := fields["materials"]; ok && !isNull(raw) {
		var materials []json.RawMessage
		if err := json.Unmarshal(raw, &materials); err != nil {
			snap.SkippedMaterials++
		}
		for _, m := range materials {
			var material SnapshotMaterial
			if err := json.Unmarshal(m, &material); err != nil {
				snap.SkippedMaterials++
				continue
			}
			snap.Materials = append(snap.Materials, material)
		}
	}

	return snap, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func decodeField(raw json.RawMessage, dst any) bool {
	if isNull(raw) {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// decodeNumbers keeps numbers as json.Number so signing sees their literal text
func decodeNumbers(raw json.RawMessage, dst any) bool {
	if isNull(raw) {
		return false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst) == nil
}
