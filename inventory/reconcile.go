package inventory

import (
	"pricing-rollup/models"
	"pricing-rollup/utils"
)

// ReconcilePlan is the set of ledger changes that brings an order's active reservations in
// line with a freshly built desired set. Insert rows are new; Release rows are existing rows
// already flipped to RELEASED.
type ReconcilePlan struct {
	Insert  []models.InventoryReservationRow
	Release []models.InventoryReservationRow
}

// Empty reports whether the plan changes nothing
func (p ReconcilePlan) Empty() bool {
	return len(p.Insert) == 0 && len(p.Release) == 0
}

// Reconcile compares desired rows with existing ones. Only engine-derived source types are
// touched; MANUAL rows are left alone.
//   - a desired key with no RESERVED row is inserted
//   - a desired key held by exactly one RESERVED row with the same qty is kept
//   - a desired key held with a different qty (or by several rows) has those rows released and
//     the desired row inserted as a new row
//   - a RESERVED key that is no longer desired (line item removed) is released
//
// Rows are never updated in place beyond the status flip.
func Reconcile(desired, existing []models.InventoryReservationRow) ReconcilePlan {
	active := make(map[models.ReservationKey][]models.InventoryReservationRow)
	var activeOrder []models.ReservationKey
	for _, r := range existing {
		if r.Status != models.ReservationReserved || r.SourceType == models.SourceTypeManual {
			continue
		}
		k := r.Key()
		if _, seen := active[k]; !seen {
			activeOrder = append(activeOrder, k)
		}
		active[k] = append(active[k], r)
	}

	plan := ReconcilePlan{
		Insert:  []models.InventoryReservationRow{},
		Release: []models.InventoryReservationRow{},
	}
	var toRelease []models.InventoryReservationRow
	wanted := make(map[models.ReservationKey]struct{}, len(desired))

	for _, d := range desired {
		k := d.Key()
		wanted[k] = struct{}{}
		held := active[k]
		if len(held) == 0 {
			plan.Insert = append(plan.Insert, d)
			continue
		}
		if len(held) == 1 && sameQty(held[0].Qty, d.Qty) {
			continue
		}
		toRelease = append(toRelease, held...)
		plan.Insert = append(plan.Insert, d)
	}

	for _, k := range activeOrder {
		if _, ok := wanted[k]; ok {
			continue
		}
		toRelease = append(toRelease, active[k]...)
	}

	plan.Release = ApplyRelease(toRelease)
	SortRows(plan.Insert)
	SortRows(plan.Release)
	return plan
}

func sameQty(a, b string) bool {
	qa, errA := utils.ParseScaled(a)
	qb, errB := utils.ParseScaled(b)
	if errA != nil || errB != nil {
		return false
	}
	return qa.Round2() == qb.Round2()
}
