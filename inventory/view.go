package inventory

import (
	"fmt"
	"sort"

	"pricing-rollup/models"
	"pricing-rollup/utils"
)

type viewKey struct {
	sourceKey string
	uom       string
}

// BuildRollupView summarizes persisted reservation rows with the given status (RESERVED when
// empty), grouped by (sourceKey, uom) with a per-sourceType breakdown. It answers "what is
// currently reserved" without re-running the order rollup. A stored qty that does not parse
// or a total beyond utils.MaxScaled is an error.
func BuildRollupView(reservations []models.InventoryReservationRow, status models.ReservationStatus) (models.ReservationRollupView, error) {
	if status == "" {
		status = models.ReservationReserved
	}

	totals := make(map[viewKey]utils.Scaled)
	breakdown := make(map[viewKey]map[models.ReservationSourceType]utils.Scaled)
	for _, r := range reservations {
		if r.Status != status {
			continue
		}
		qty, err := utils.ParseScaled(r.Qty)
		if err != nil {
			return models.ReservationRollupView{}, fmt.Errorf("reservation %s qty: %w", r.ID, err)
		}
		k := viewKey{sourceKey: r.SourceKey, uom: r.UOM}
		total, err := totals[k].Add(qty)
		if err != nil {
			return models.ReservationRollupView{}, fmt.Errorf("%s (%s) total: %w", k.sourceKey, k.uom, err)
		}
		totals[k] = total
		if breakdown[k] == nil {
			breakdown[k] = make(map[models.ReservationSourceType]utils.Scaled)
		}
		part, err := breakdown[k][r.SourceType].Add(qty)
		if err != nil {
			return models.ReservationRollupView{}, fmt.Errorf("%s (%s) %s total: %w", k.sourceKey, k.uom, r.SourceType, err)
		}
		breakdown[k][r.SourceType] = part
	}

	keys := make([]viewKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].sourceKey != keys[j].sourceKey {
			return keys[i].sourceKey < keys[j].sourceKey
		}
		return keys[i].uom < keys[j].uom
	})

	items := make([]models.ReservationViewItem, 0, len(keys))
	for _, k := range keys {
		types := make([]models.ReservationSourceType, 0, len(breakdown[k]))
		for st := range breakdown[k] {
			types = append(types, st)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

		parts := make([]models.ReservationBreakdown, 0, len(types))
		for _, st := range types {
			parts = append(parts, models.ReservationBreakdown{SourceType: st, Qty: breakdown[k][st].Fixed2()})
		}
		items = append(items, models.ReservationViewItem{
			SourceKey: k.sourceKey,
			UOM:       k.uom,
			Qty:       totals[k].Fixed2(),
			Breakdown: parts,
		})
	}
	return models.ReservationRollupView{Items: items}, nil
}
