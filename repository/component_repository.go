package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"pricing-rollup/logger"
	"pricing-rollup/models"
)

// ComponentRepository handles database operations for components accepted onto line items
type ComponentRepository struct {
	db  *sql.DB
	log *logger.Logger
}

// NewComponentRepository creates a new ComponentRepository
func NewComponentRepository(conn *sql.DB, log *logger.Logger) *ComponentRepository {
	return &ComponentRepository{db: conn, log: log.With("repository", "ComponentRepository")}
}

// Ensure ComponentRepository implements ComponentRepositoryInterface
var _ ComponentRepositoryInterface = (*ComponentRepository)(nil)

// ListByOrder returns every accepted component across the order's line items
func (r *ComponentRepository) ListByOrder(ctx context.Context, organizationID, orderID string) ([]models.AcceptedComponent, error) {
	query := `
		SELECT id, line_item_id, kind, sku_ref, child_product_id, title, qty,
		       unit_price_cents, amount_cents, invoice_visibility
		FROM order_line_item_components
		WHERE organization_id = $1 AND order_id = $2
		ORDER BY line_item_id, created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query, organizationID, orderID)
	if err != nil {
		r.log.Error("❌ ListByOrder: query failed", "orderId", orderID, "error", err)
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer rows.Close()

	components := []models.AcceptedComponent{}
	for rows.Next() {
		var c models.AcceptedComponent
		var kind string
		var skuRef, childProductID sql.NullString
		var unitPrice, amount sql.NullInt64
		if err := rows.Scan(
			&c.ID,
			&c.LineItemID,
			&kind,
			&skuRef,
			&childProductID,
			&c.Title,
			&c.Qty,
			&unitPrice,
			&amount,
			&c.InvoiceVisibility,
		); err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		c.Kind = models.ComponentKind(kind)
		c.SkuRef = nullStringPtr(skuRef)
		c.ChildProductID = nullStringPtr(childProductID)
		c.UnitPriceCents = nullInt64Ptr(unitPrice)
		c.AmountCents = nullInt64Ptr(amount)
		components = append(components, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating components: %w", err)
	}
	return components, nil
}

// Insert stores a newly accepted component and assigns its id
func (r *ComponentRepository) Insert(ctx context.Context, organizationID, orderID string, c *models.AcceptedComponent, createdByUserID *string) error {
	c.ID = uuid.NewString()

	query := `
		INSERT INTO order_line_item_components (
			id, organization_id, order_id, line_item_id, kind, sku_ref, child_product_id,
			title, qty, unit_price_cents, amount_cents, invoice_visibility, created_by_user_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		organizationID,
		orderID,
		c.LineItemID,
		string(c.Kind),
		ptrNullString(c.SkuRef),
		ptrNullString(c.ChildProductID),
		c.Title,
		c.Qty,
		ptrNullInt64(c.UnitPriceCents),
		ptrNullInt64(c.AmountCents),
		c.InvoiceVisibility,
		ptrNullString(createdByUserID),
	)
	if err != nil {
		r.log.Error("❌ Insert: failed to insert component", "lineItemId", c.LineItemID, "error", err)
		return fmt.Errorf("failed to insert component: %w", err)
	}

	r.log.Info("✅ Insert: accepted component", "id", c.ID, "lineItemId", c.LineItemID, "kind", c.Kind, "key", c.Key())
	return nil
}

func nullStringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func nullInt64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func ptrNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptrNullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}
