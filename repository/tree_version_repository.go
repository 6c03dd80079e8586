package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pricing-rollup/logger"
	"pricing-rollup/models"
)

// TreeVersionRepository reads pricing tree versions
type TreeVersionRepository struct {
	db  *sql.DB
	log *logger.Logger
}

func NewTreeVersionRepository(conn *sql.DB, log *logger.Logger) *TreeVersionRepository {
	return &TreeVersionRepository{db: conn, log: log.With("repository", "TreeVersionRepository")}
}

var _ TreeVersionRepositoryInterface = (*TreeVersionRepository)(nil)

// GetByID returns the tree version or ErrTreeVersionNotFound
func (r *TreeVersionRepository) GetByID(ctx context.Context, organizationID, treeVersionID string) (*models.TreeVersion, error) {
	query := `SELECT id, organization_id, status FROM pbv2_tree_versions WHERE id = $1 AND organization_id = $2`

	var tv models.TreeVersion
	var status string
	err := r.db.QueryRowContext(ctx, query, treeVersionID, organizationID).Scan(&tv.ID, &tv.OrganizationID, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTreeVersionNotFound
		}
		r.log.Error("❌ GetByID: query failed", "treeVersionId", treeVersionID, "error", err)
		return nil, fmt.Errorf("failed to fetch tree version: %w", err)
	}
	tv.Status = models.TreeVersionStatus(status)
	return &tv, nil
}
