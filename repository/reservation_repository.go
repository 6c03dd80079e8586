package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"pricing-rollup/logger"
	"pricing-rollup/models"
	"pricing-rollup/utils"
)

// ReservationRepository handles the inventory_reservations ledger.
// Rows are inserted RESERVED and later flipped to RELEASED; nothing is deleted.
type ReservationRepository struct {
	db  *sql.DB
	log *logger.Logger
}

// NewReservationRepository creates a new ReservationRepository
func NewReservationRepository(conn *sql.DB, log *logger.Logger) *ReservationRepository {
	return &ReservationRepository{db: conn, log: log.With("repository", "ReservationRepository")}
}

// Ensure ReservationRepository implements ReservationRepositoryInterface
var _ ReservationRepositoryInterface = (*ReservationRepository)(nil)

const reservationColumns = `
	id, organization_id, order_id, order_line_item_id, source_type, source_key, uom, qty,
	status, created_by_user_id, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner) (models.InventoryReservationRow, error) {
	var row models.InventoryReservationRow
	var sourceType, status, qty string
	var lineItemID, createdBy sql.NullString
	err := s.Scan(
		&row.ID,
		&row.OrganizationID,
		&row.OrderID,
		&lineItemID,
		&sourceType,
		&row.SourceKey,
		&row.UOM,
		&qty,
		&status,
		&createdBy,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		return row, err
	}
	row.SourceType = models.ReservationSourceType(sourceType)
	row.Status = models.ReservationStatus(status)
	row.OrderLineItemID = nullStringPtr(lineItemID)
	row.CreatedByUserID = nullStringPtr(createdBy)

	// NUMERIC comes back as "3.3000"; keep the two-decimal wire format
	if scaled, err := utils.ParseScaled(qty); err == nil {
		row.Qty = scaled.Fixed2()
	} else {
		row.Qty = qty
	}
	return row, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listReservations(ctx context.Context, q queryer, organizationID, orderID string) ([]models.InventoryReservationRow, error) {
	query := `SELECT ` + reservationColumns + `
		FROM inventory_reservations
		WHERE organization_id = $1 AND order_id = $2
		ORDER BY created_at, id
	`
	rows, err := q.QueryContext(ctx, query, organizationID, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	out := []models.InventoryReservationRow{}
	for rows.Next() {
		row, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}
	return out, nil
}

// ListByOrder returns every reservation row of the order, in insertion order
func (r *ReservationRepository) ListByOrder(ctx context.Context, organizationID, orderID string) ([]models.InventoryReservationRow, error) {
	rows, err := listReservations(ctx, r.db, organizationID, orderID)
	if err != nil {
		r.log.Error("❌ ListByOrder: failed", "orderId", orderID, "error", err)
		return nil, err
	}
	return rows, nil
}

// ApplyChanges runs fn against the order's current reservations inside one transaction and
// writes what it returns. The order row and its line items are locked first, so concurrent
// reserve/release/reconcile calls for the same order run one after another and each sees the
// rows the previous one committed. Line items read by fn cannot change until Commit.
func (r *ReservationRepository) ApplyChanges(ctx context.Context, organizationID, orderID string, fn ChangeFunc) (*ReservationChanges, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.log.Error("❌ ApplyChanges: error starting transaction", "orderId", orderID, "error", err)
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	var lockedID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM orders WHERE id = $1 AND organization_id = $2 FOR UPDATE`,
		orderID, organizationID,
	).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock order: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`SELECT id FROM order_line_items WHERE organization_id = $1 AND order_id = $2 FOR UPDATE`,
		organizationID, orderID,
	); err != nil {
		return nil, fmt.Errorf("failed to lock line items: %w", err)
	}

	existing, err := listReservations(ctx, tx, organizationID, orderID)
	if err != nil {
		return nil, err
	}

	toInsert, toRelease, err := fn(existing)
	if err != nil {
		return nil, err
	}

	changes := &ReservationChanges{
		Inserted: []models.InventoryReservationRow{},
		Released: []models.InventoryReservationRow{},
	}

	for _, row := range toRelease {
		if row.ID == "" {
			continue
		}
		var updatedAt string
		err := tx.QueryRowContext(ctx, `
			UPDATE inventory_reservations
			SET status = 'RELEASED', updated_at = now()
			WHERE id = $1 AND organization_id = $2 AND order_id = $3 AND status = 'RESERVED'
			RETURNING updated_at
		`, row.ID, organizationID, orderID).Scan(&updatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			r.log.Error("❌ ApplyChanges: error releasing reservation", "id", row.ID, "error", err)
			return nil, fmt.Errorf("failed to release reservation %s: %w", row.ID, err)
		}
		row.Status = models.ReservationReleased
		row.UpdatedAt = updatedAt
		changes.Released = append(changes.Released, row)
	}

	for _, row := range toInsert {
		row.ID = uuid.NewString()
		row.OrganizationID = organizationID
		row.OrderID = orderID
		row.Status = models.ReservationReserved
		err := tx.QueryRowContext(ctx, `
			INSERT INTO inventory_reservations (
				id, organization_id, order_id, order_line_item_id, source_type, source_key, uom,
				qty, status, created_by_user_id
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at, updated_at
		`,
			row.ID,
			row.OrganizationID,
			row.OrderID,
			ptrNullString(row.OrderLineItemID),
			string(row.SourceType),
			row.SourceKey,
			row.UOM,
			row.Qty,
			string(row.Status),
			ptrNullString(row.CreatedByUserID),
		).Scan(&row.CreatedAt, &row.UpdatedAt)
		if err != nil {
			r.log.Error("❌ ApplyChanges: error inserting reservation",
				"sourceType", row.SourceType, "sourceKey", row.SourceKey, "uom", row.UOM, "error", err)
			return nil, fmt.Errorf("failed to insert reservation %s/%s: %w", row.SourceKey, row.UOM, err)
		}
		changes.Inserted = append(changes.Inserted, row)
	}

	if err := tx.Commit(); err != nil {
		r.log.Error("❌ ApplyChanges: error committing transaction", "orderId", orderID, "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.log.Info("✅ ApplyChanges: committed",
		"orderId", orderID, "inserted", len(changes.Inserted), "released", len(changes.Released))
	return changes, nil
}
