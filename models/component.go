package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"pricing-rollup/utils"
)

// ComponentKind tells whether an accepted component is an inline SKU or a product reference
type ComponentKind string

const (
	ComponentKindInlineSku  ComponentKind = "inlineSku"
	ComponentKindProductRef ComponentKind = "productRef"
)

// AcceptedComponent is a child item a user explicitly accepted onto a line item
type AcceptedComponent struct {
	ID                string          `json:"id,omitempty"`
	Kind              ComponentKind   `json:"kind"`
	SkuRef            *string         `json:"skuRef,omitempty"`
	ChildProductID    *string         `json:"childProductId,omitempty"`
	Title             string          `json:"title"`
	Qty               decimal.Decimal `json:"qty"`
	UnitPriceCents    *int64          `json:"unitPriceCents,omitempty"`
	AmountCents       *int64          `json:"amountCents,omitempty"`
	InvoiceVisibility string          `json:"invoiceVisibility"`
	LineItemID        string          `json:"lineItemId"`
}

// Key is the identifier used for this component's inventory: skuRef for inline SKUs,
// childProductId for product references. Empty when the kind's key is missing.
func (c AcceptedComponent) Key() string {
	var key *string
	switch c.Kind {
	case ComponentKindInlineSku:
		key = c.SkuRef
	case ComponentKindProductRef:
		key = c.ChildProductID
	}
	if key == nil {
		return ""
	}
	return strings.TrimSpace(*key)
}

// ComponentAggregate is an accepted component as it appears in the rollup; Qty has two decimals
type ComponentAggregate struct {
	Kind              ComponentKind `json:"kind"`
	SkuRef            *string       `json:"skuRef,omitempty"`
	ChildProductID    *string       `json:"childProductId,omitempty"`
	Title             string        `json:"title"`
	Qty               string        `json:"qty"`
	UnitPriceCents    *int64        `json:"unitPriceCents,omitempty"`
	AmountCents       *int64        `json:"amountCents,omitempty"`
	InvoiceVisibility string        `json:"invoiceVisibility"`
	LineItemID        string        `json:"lineItemId"`
}

// AcceptComponentRequest is the body of POST /orders/:orderId/line-items/:lineItemId/components
// Example: {"kind": "inlineSku", "skuRef": "GROMMET-10", "title": "Grommets", "qty": "4", "invoiceVisibility": "hidden"}
type AcceptComponentRequest struct {
	Kind              ComponentKind   `json:"kind"`
	SkuRef            *string         `json:"skuRef,omitempty"`
	ChildProductID    *string         `json:"childProductId,omitempty"`
	Title             string          `json:"title"`
	Qty               decimal.Decimal `json:"qty"`
	UnitPriceCents    *int64          `json:"unitPriceCents,omitempty"`
	AmountCents       *int64          `json:"amountCents,omitempty"`
	InvoiceVisibility string          `json:"invoiceVisibility"`
}

// Validate checks the request shape before anything touches the database
func (r *AcceptComponentRequest) Validate() error {
	switch r.Kind {
	case ComponentKindInlineSku:
		if r.SkuRef == nil || strings.TrimSpace(*r.SkuRef) == "" {
			return fmt.Errorf("skuRef is required for inlineSku components")
		}
	case ComponentKindProductRef:
		if r.ChildProductID == nil || strings.TrimSpace(*r.ChildProductID) == "" {
			return fmt.Errorf("childProductId is required for productRef components")
		}
	default:
		return fmt.Errorf("kind must be 'inlineSku' or 'productRef'")
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !r.Qty.IsPositive() {
		return fmt.Errorf("qty must be greater than 0")
	}
	if _, err := utils.ToScaled(r.Qty); err != nil {
		return fmt.Errorf("qty: %w", err)
	}
	return nil
}
