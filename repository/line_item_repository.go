package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pricing-rollup/logger"
	"pricing-rollup/models"
)

// LineItemRepository handles database operations for order line items
type LineItemRepository struct {
	db  *sql.DB
	log *logger.Logger
}

// NewLineItemRepository creates a new LineItemRepository
func NewLineItemRepository(conn *sql.DB, log *logger.Logger) *LineItemRepository {
	return &LineItemRepository{db: conn, log: log.With("repository", "LineItemRepository")}
}

// Ensure LineItemRepository implements LineItemRepositoryInterface
var _ LineItemRepositoryInterface = (*LineItemRepository)(nil)

// OrderExists reports whether the order belongs to the organization
func (r *LineItemRepository) OrderExists(ctx context.Context, organizationID, orderID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1 AND organization_id = $2)`
	if err := r.db.QueryRowContext(ctx, query, orderID, organizationID).Scan(&exists); err != nil {
		r.log.Error("❌ OrderExists: query failed", "orderId", orderID, "error", err)
		return false, fmt.Errorf("failed to check order: %w", err)
	}
	return exists, nil
}

// ListByOrder returns the order's line items with decoded snapshots, ordered by id.
// A snapshot that is not a JSON object is logged and treated as absent.
func (r *LineItemRepository) ListByOrder(ctx context.Context, organizationID, orderID string) ([]models.OrderLineItem, error) {
	query := `
		SELECT id, order_id, pricing_snapshot
		FROM order_line_items
		WHERE organization_id = $1 AND order_id = $2
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, organizationID, orderID)
	if err != nil {
		r.log.Error("❌ ListByOrder: query failed", "orderId", orderID, "error", err)
		return nil, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderLineItem{}
	for rows.Next() {
		var id, order string
		var raw []byte
		if err := rows.Scan(&id, &order, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		items = append(items, r.decode(id, order, raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating line items: %w", err)
	}

	r.log.Debug("ListByOrder", "orderId", orderID, "count", len(items))
	return items, nil
}

// GetByID returns a single line item of the order, or ErrLineItemNotFound
func (r *LineItemRepository) GetByID(ctx context.Context, organizationID, orderID, lineItemID string) (*models.OrderLineItem, error) {
	query := `
		SELECT id, order_id, pricing_snapshot
		FROM order_line_items
		WHERE organization_id = $1 AND order_id = $2 AND id = $3
	`
	var id, order string
	var raw []byte
	err := r.db.QueryRowContext(ctx, query, organizationID, orderID, lineItemID).Scan(&id, &order, &raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLineItemNotFound
		}
		r.log.Error("❌ GetByID: query failed", "lineItemId", lineItemID, "error", err)
		return nil, fmt.Errorf("failed to fetch line item: %w", err)
	}
	item := r.decode(id, order, raw)
	return &item, nil
}

func (r *LineItemRepository) decode(id, orderID string, raw []byte) models.OrderLineItem {
	snap, err := models.DecodePricingSnapshot(raw)
	if err != nil {
		r.log.Warn("⚠️ ignoring malformed pricing snapshot", "lineItemId", id, "error", err)
		snap = nil
	}
	return models.OrderLineItem{ID: id, OrderID: orderID, Snapshot: snap}
}
