package inventory

import (
	"fmt"
	"sort"

	"pricing-rollup/models"
	"pricing-rollup/utils"
)

// BuildParams are the inputs to BuildReservationsFromRollup
type BuildParams struct {
	OrganizationID  string
	OrderID         string
	Rollup          *models.OrderRollup
	CreatedByUserID *string
}

type slot struct {
	key       models.ReservationKey
	qty       utils.Scaled
	lineItems map[string]struct{}
}

type slots struct {
	byKey map[models.ReservationKey]*slot
	order []models.ReservationKey
}

func newSlots() *slots {
	return &slots{byKey: make(map[models.ReservationKey]*slot)}
}

func (s *slots) add(key models.ReservationKey, qty utils.Scaled, lineItemIDs ...string) error {
	acc, ok := s.byKey[key]
	if !ok {
		acc = &slot{key: key, lineItems: make(map[string]struct{})}
		s.byKey[key] = acc
		s.order = append(s.order, key)
	}
	sum, err := acc.qty.Add(qty)
	if err != nil {
		return fmt.Errorf("%s %s (%s): %w", key.SourceType, key.SourceKey, key.UOM, err)
	}
	acc.qty = sum
	for _, id := range lineItemIDs {
		if id != "" {
			acc.lineItems[id] = struct{}{}
		}
	}
	return nil
}

// BuildReservationsFromRollup maps a rollup to RESERVED rows: one PBV2_MATERIAL row per
// (skuRef, uom) and one PBV2_COMPONENT row per component key, counted in EA. Rows sharing a
// key within a source type are summed; rows that round to zero or less are dropped.
// OrderLineItemID is set only when every contribution came from a single line item.
// Output is sorted by sourceKey, uom, sourceType. A qty that cannot be parsed or a sum beyond
// utils.MaxScaled fails the whole mapping; the error wraps utils.ErrQuantityOutOfRange for the latter.
func BuildReservationsFromRollup(p BuildParams) ([]models.InventoryReservationRow, error) {
	rows := []models.InventoryReservationRow{}
	if p.Rollup == nil {
		return rows, nil
	}

	acc := newSlots()
	for _, m := range p.Rollup.Materials {
		sku := utils.NormalizeKey(m.SkuRef)
		if sku == "" {
			continue
		}
		qty, err := utils.ParseScaled(m.Qty)
		if err != nil {
			return nil, fmt.Errorf("material %s qty: %w", sku, err)
		}
		ids := make([]string, 0, len(m.Sources))
		for _, src := range m.Sources {
			ids = append(ids, src.LineItemID)
		}
		err = acc.add(models.ReservationKey{
			SourceType: models.SourceTypeMaterial,
			SourceKey:  sku,
			UOM:        utils.NormalizeUOM(m.UOM),
		}, qty, ids...)
		if err != nil {
			return nil, err
		}
	}

	for _, c := range p.Rollup.Components {
		key := componentKey(c)
		if key == "" {
			continue
		}
		qty, err := utils.ParseScaled(c.Qty)
		if err != nil {
			return nil, fmt.Errorf("component %s qty: %w", key, err)
		}
		err = acc.add(models.ReservationKey{
			SourceType: models.SourceTypeComponent,
			SourceKey:  key,
			UOM:        utils.DefaultUOM,
		}, qty, c.LineItemID)
		if err != nil {
			return nil, err
		}
	}

	for _, k := range acc.order {
		s := acc.byKey[k]
		qty := s.qty.Round2()
		if qty <= 0 {
			continue
		}
		rows = append(rows, models.InventoryReservationRow{
			OrganizationID:  p.OrganizationID,
			OrderID:         p.OrderID,
			OrderLineItemID: singleLineItem(s.lineItems),
			SourceType:      k.SourceType,
			SourceKey:       k.SourceKey,
			UOM:             k.UOM,
			Qty:             qty.Fixed2(),
			Status:          models.ReservationReserved,
			CreatedByUserID: cloneString(p.CreatedByUserID),
		})
	}

	SortRows(rows)
	return rows, nil
}

// DiffForInsert returns the desired rows whose (sourceType, sourceKey, uom) is not already held
// by a RESERVED row. RELEASED rows never block a key, so a released reservation can be taken
// again. Calling it with the rows it previously produced as existingReserved yields nothing.
func DiffForInsert(desired, existingReserved []models.InventoryReservationRow) []models.InventoryReservationRow {
	held := make(map[models.ReservationKey]struct{}, len(existingReserved))
	for _, r := range existingReserved {
		if r.Status == models.ReservationReserved {
			held[r.Key()] = struct{}{}
		}
	}

	out := []models.InventoryReservationRow{}
	for _, d := range desired {
		if _, ok := held[d.Key()]; ok {
			continue
		}
		out = append(out, d)
	}
	return out
}

// ApplyRelease returns copies of rows with Status RELEASED; every other field is kept
func ApplyRelease(rows []models.InventoryReservationRow) []models.InventoryReservationRow {
	out := make([]models.InventoryReservationRow, 0, len(rows))
	for _, r := range rows {
		r.Status = models.ReservationReleased
		r.OrderLineItemID = cloneString(r.OrderLineItemID)
		r.CreatedByUserID = cloneString(r.CreatedByUserID)
		out = append(out, r)
	}
	return out
}

// SortRows orders rows by sourceKey, uom, sourceType, then id
func SortRows(rows []models.InventoryReservationRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.SourceKey != b.SourceKey {
			return a.SourceKey < b.SourceKey
		}
		if a.UOM != b.UOM {
			return a.UOM < b.UOM
		}
		if a.SourceType != b.SourceType {
			return a.SourceType < b.SourceType
		}
		return a.ID < b.ID
	})
}

func componentKey(c models.ComponentAggregate) string {
	switch c.Kind {
	case models.ComponentKindInlineSku:
		return utils.NormalizeKey(utils.Deref(c.SkuRef))
	case models.ComponentKindProductRef:
		return utils.NormalizeKey(utils.Deref(c.ChildProductID))
	}
	return ""
}

func singleLineItem(ids map[string]struct{}) *string {
	if len(ids) != 1 {
		return nil
	}
	for id := range ids {
		v := id
		return &v
	}
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
