package pricing

import (
	"fmt"
	"sort"
	"strings"

	"pricing-rollup/models"
	"pricing-rollup/utils"
)

type materialKey struct {
	skuRef string
	uom    string
}

type materialSource struct {
	lineItemID   string
	sourceNodeID string
	qty          utils.Scaled
}

type materialTotal struct {
	total   utils.Scaled
	sources []materialSource
}

// BuildOrderRollup aggregates an order's line item snapshots and accepted components.
//
// A line item contributes materials only when its snapshot carries a signature that matches
// the signature recomputed from its current inputs and every material entry is usable. Anything
// else becomes a warning and the line item contributes nothing; the rollup itself never fails.
// Output ordering is fully determined by the input values, not by their order.
func BuildOrderRollup(orderID string, lineItems []models.OrderLineItem, accepted []models.AcceptedComponent) *models.OrderRollup {
	warnings := []models.RollupWarning{}
	totals := make(map[materialKey]*materialTotal)

	for _, li := range lineItems {
		if li.Snapshot == nil {
			continue
		}
		if warning := verifySnapshot(li.ID, li.Snapshot); warning != nil {
			warnings = append(warnings, *warning)
			continue
		}
		contributions, warning := lineItemMaterials(li.ID, li.Snapshot)
		if warning != nil {
			warnings = append(warnings, *warning)
			continue
		}
		if warning := mergeMaterials(totals, li.ID, contributions); warning != nil {
			warnings = append(warnings, *warning)
		}
	}

	components, componentWarnings := componentAggregates(accepted)
	warnings = append(warnings, componentWarnings...)

	sort.SliceStable(warnings, func(i, j int) bool {
		a, b := warnings[i], warnings[j]
		if la, lb := utils.Deref(a.LineItemID), utils.Deref(b.LineItemID); la != lb {
			return la < lb
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Message < b.Message
	})

	return &models.OrderRollup{
		OrderID:    orderID,
		Materials:  materialAggregates(totals),
		Components: components,
		Warnings:   warnings,
	}
}

type contribution struct {
	key    materialKey
	source materialSource
}

// lineItemMaterials converts a verified snapshot's materials. Entries dropped while decoding,
// blank skuRefs and quantities outside the representable range reject the whole line item.
func lineItemMaterials(lineItemID string, snap *models.PricingSnapshot) ([]contribution, *models.RollupWarning) {
	if snap.SkippedMaterials > 0 {
		return nil, newWarning(models.WarningMaterialsInvalid, lineItemID,
			fmt.Sprintf("Line item %s snapshot has %d unreadable material entries; its materials were excluded",
				lineItemID, snap.SkippedMaterials))
	}

	out := make([]contribution, 0, len(snap.Materials))
	for i, m := range snap.Materials {
		sku := utils.NormalizeKey(m.SkuRef)
		if sku == "" {
			return nil, newWarning(models.WarningMaterialsInvalid, lineItemID,
				fmt.Sprintf("Line item %s snapshot material %d has no skuRef; its materials were excluded", lineItemID, i))
		}
		qty, err := utils.ToScaled(m.Qty)
		if err != nil {
			return nil, newWarning(models.WarningQuantityOutOfRange, lineItemID,
				fmt.Sprintf("Line item %s material %s qty %s is out of range; its materials were excluded",
					lineItemID, sku, m.Qty.String()))
		}
		out = append(out, contribution{
			key: materialKey{skuRef: sku, uom: utils.NormalizeUOM(m.UOM)},
			source: materialSource{
				lineItemID:   lineItemID,
				sourceNodeID: utils.NormalizeKey(m.SourceNodeID),
				qty:          qty,
			},
		})
	}
	return out, nil
}

// mergeMaterials adds a line item's contributions to the order totals, all or nothing. When any
// total would leave the representable range, nothing is added and a warning is returned.
func mergeMaterials(totals map[materialKey]*materialTotal, lineItemID string, contributions []contribution) *models.RollupWarning {
	pending := make(map[materialKey]utils.Scaled)
	for _, c := range contributions {
		current, ok := pending[c.key]
		if !ok && totals[c.key] != nil {
			current = totals[c.key].total
		}
		next, err := current.Add(c.source.qty)
		if err != nil {
			return newWarning(models.WarningQuantityOutOfRange, lineItemID,
				fmt.Sprintf("Line item %s would push %s (%s) past the largest quantity; its materials were excluded",
					lineItemID, c.key.skuRef, c.key.uom))
		}
		pending[c.key] = next
	}

	for _, c := range contributions {
		acc, ok := totals[c.key]
		if !ok {
			acc = &materialTotal{}
			totals[c.key] = acc
		}
		acc.total = pending[c.key]
		acc.sources = append(acc.sources, c.source)
	}
	return nil
}

// verifySnapshot returns nil when the snapshot's stored signature matches its inputs
func verifySnapshot(lineItemID string, snap *models.PricingSnapshot) *models.RollupWarning {
	if snap.InputSignature == nil || strings.TrimSpace(*snap.InputSignature) == "" {
		return newWarning(models.WarningSignatureMissing, lineItemID,
			fmt.Sprintf("Line item %s snapshot has no input signature; its materials were excluded", lineItemID))
	}

	in, ok := SnapshotInputs(snap)
	if !ok {
		return newWarning(models.WarningInputsMissing, lineItemID,
			fmt.Sprintf("Line item %s snapshot is missing %s; its materials were excluded",
				lineItemID, strings.Join(missingInputs(snap), ", ")))
	}

	sig, err := ComputeSignature(in)
	if err != nil {
		return newWarning(models.WarningSignatureMismatch, lineItemID,
			fmt.Sprintf("Line item %s snapshot inputs could not be signed (%v); its materials were excluded", lineItemID, err))
	}
	if !SignaturesEqual(sig, *snap.InputSignature) {
		return newWarning(models.WarningSignatureMismatch, lineItemID,
			fmt.Sprintf("Line item %s inputs changed since its snapshot was priced; its materials were excluded", lineItemID))
	}
	return nil
}

func missingInputs(snap *models.PricingSnapshot) []string {
	var missing []string
	if snap.TreeVersionID == nil {
		missing = append(missing, "treeVersionId")
	}
	if snap.ExplicitSelections == nil {
		missing = append(missing, "explicitSelections")
	}
	if snap.Env == nil {
		missing = append(missing, "env")
	}
	return missing
}

func newWarning(code, lineItemID, message string) *models.RollupWarning {
	id := lineItemID
	return &models.RollupWarning{Code: code, Message: message, LineItemID: &id}
}

func materialAggregates(totals map[materialKey]*materialTotal) []models.MaterialAggregate {
	keys := make([]materialKey, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].skuRef != keys[j].skuRef {
			return keys[i].skuRef < keys[j].skuRef
		}
		return keys[i].uom < keys[j].uom
	})

	out := make([]models.MaterialAggregate, 0, len(keys))
	for _, k := range keys {
		acc := totals[k]
		sort.SliceStable(acc.sources, func(i, j int) bool {
			a, b := acc.sources[i], acc.sources[j]
			if a.lineItemID != b.lineItemID {
				return a.lineItemID < b.lineItemID
			}
			if a.sourceNodeID != b.sourceNodeID {
				return a.sourceNodeID < b.sourceNodeID
			}
			return a.qty < b.qty
		})

		sources := make([]models.MaterialSource, 0, len(acc.sources))
		for _, s := range acc.sources {
			sources = append(sources, models.MaterialSource{
				LineItemID:   s.lineItemID,
				SourceNodeID: s.sourceNodeID,
				Qty:          s.qty.String(),
			})
		}
		out = append(out, models.MaterialAggregate{
			SkuRef:  k.skuRef,
			UOM:     k.uom,
			Qty:     acc.total.String(),
			Sources: sources,
		})
	}
	return out
}

// componentAggregates copies accepted components as-is: acceptance is an explicit user action,
// so there is no staleness check here. A component whose qty is out of range is left out with
// a warning.
func componentAggregates(accepted []models.AcceptedComponent) ([]models.ComponentAggregate, []models.RollupWarning) {
	type sortable struct {
		agg    models.ComponentAggregate
		tieKey string
	}

	var warnings []models.RollupWarning
	rows := make([]sortable, 0, len(accepted))
	for _, c := range accepted {
		qty, err := utils.ToScaled(c.Qty)
		if err != nil {
			warnings = append(warnings, *newWarning(models.WarningQuantityOutOfRange, c.LineItemID,
				fmt.Sprintf("Component %q on line item %s has qty %s out of range; it was excluded",
					c.Title, c.LineItemID, c.Qty.String())))
			continue
		}
		rows = append(rows, sortable{
			agg: models.ComponentAggregate{
				Kind:              c.Kind,
				SkuRef:            cloneString(c.SkuRef),
				ChildProductID:    cloneString(c.ChildProductID),
				Title:             c.Title,
				Qty:               qty.Round2().Fixed2(),
				UnitPriceCents:    cloneInt(c.UnitPriceCents),
				AmountCents:       cloneInt(c.AmountCents),
				InvoiceVisibility: c.InvoiceVisibility,
				LineItemID:        c.LineItemID,
			},
			tieKey: c.Key(),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.agg.LineItemID != b.agg.LineItemID {
			return a.agg.LineItemID < b.agg.LineItemID
		}
		if a.agg.Title != b.agg.Title {
			return a.agg.Title < b.agg.Title
		}
		if a.tieKey != b.tieKey {
			return a.tieKey < b.tieKey
		}
		return a.agg.Kind < b.agg.Kind
	})

	out := make([]models.ComponentAggregate, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.agg)
	}
	return out, warnings
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt(i *int64) *int64 {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
