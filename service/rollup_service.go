package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"pricing-rollup/apierr"
	"pricing-rollup/logger"
	"pricing-rollup/models"
	"pricing-rollup/pricing"
	"pricing-rollup/repository"
	"pricing-rollup/utils"
)

// Error codes returned by the services besides the tree-version guard's
const (
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeOrderNotFound      = "ORDER_NOT_FOUND"
	CodeLineItemNotFound   = "LINE_ITEM_NOT_FOUND"
	CodeQuantityOutOfRange = "QUANTITY_OUT_OF_RANGE"
)

// RollupService loads an order's line items and accepted components and aggregates them
type RollupService struct {
	lineItems    repository.LineItemRepositoryInterface
	components   repository.ComponentRepositoryInterface
	treeVersions repository.TreeVersionRepositoryInterface
	log          *logger.Logger
}

// NewRollupService creates a new RollupService
func NewRollupService(
	lineItems repository.LineItemRepositoryInterface,
	components repository.ComponentRepositoryInterface,
	treeVersions repository.TreeVersionRepositoryInterface,
	log *logger.Logger,
) *RollupService {
	return &RollupService{
		lineItems:    lineItems,
		components:   components,
		treeVersions: treeVersions,
		log:          log.With("service", "RollupService"),
	}
}

// Ensure RollupService implements RollupServiceInterface
var _ RollupServiceInterface = (*RollupService)(nil)

// BuildRollup returns the order's rollup. Stale or unsigned snapshots show up as warnings.
func (s *RollupService) BuildRollup(ctx context.Context, ref OrderRef) (*models.OrderRollup, error) {
	rollup, _, err := s.build(ctx, ref)
	return rollup, err
}

// build also returns the loaded line items so callers can guard their tree versions
func (s *RollupService) build(ctx context.Context, ref OrderRef) (*models.OrderRollup, []models.OrderLineItem, error) {
	if err := s.requireOrder(ctx, ref); err != nil {
		return nil, nil, err
	}

	lineItems, err := s.lineItems.ListByOrder(ctx, ref.OrganizationID, ref.OrderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load line items: %w", err)
	}
	accepted, err := s.components.ListByOrder(ctx, ref.OrganizationID, ref.OrderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load components: %w", err)
	}

	rollup := pricing.BuildOrderRollup(ref.OrderID, lineItems, accepted)
	for _, w := range rollup.Warnings {
		s.log.Warn("⚠️ line item excluded from rollup",
			"orderId", ref.OrderID, "lineItemId", utils.Deref(w.LineItemID), "code", w.Code)
	}
	s.log.Debug("rollup built",
		"orderId", ref.OrderID,
		"lineItems", len(lineItems),
		"materials", len(rollup.Materials),
		"components", len(rollup.Components),
		"warnings", len(rollup.Warnings))
	return rollup, lineItems, nil
}

func (s *RollupService) requireOrder(ctx context.Context, ref OrderRef) error {
	if ref.OrganizationID == "" || ref.OrderID == "" {
		return apierr.BadRequest(CodeInvalidArgument, fmt.Errorf("organizationId and orderId are required"))
	}
	ok, err := s.lineItems.OrderExists(ctx, ref.OrganizationID, ref.OrderID)
	if err != nil {
		return err
	}
	if !ok {
		return apierr.NotFound(CodeOrderNotFound, repository.ErrOrderNotFound)
	}
	return nil
}

// guardTreeVersions applies the draft guard to every distinct tree version referenced by the
// line items. Unknown tree versions pass: the guard only blocks what it can see is DRAFT.
func (s *RollupService) guardTreeVersions(ctx context.Context, organizationID string, lineItems []models.OrderLineItem, action pricing.GuardAction) error {
	seen := make(map[string]struct{})
	var ids []string
	for _, li := range lineItems {
		if li.Snapshot == nil {
			continue
		}
		id := utils.NormalizeKey(utils.Deref(li.Snapshot.TreeVersionID))
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := s.guardTreeVersion(ctx, organizationID, id, action); err != nil {
			return err
		}
	}
	return nil
}

func (s *RollupService) guardTreeVersion(ctx context.Context, organizationID, treeVersionID string, action pricing.GuardAction) error {
	tv, err := s.treeVersions.GetByID(ctx, organizationID, treeVersionID)
	if errors.Is(err, repository.ErrTreeVersionNotFound) {
		s.log.Warn("⚠️ tree version not found, skipping draft guard", "treeVersionId", treeVersionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load tree version %s: %w", treeVersionID, err)
	}
	if err := pricing.AssertNotDraft(string(tv.Status), action); err != nil {
		s.log.Info("🚫 blocked by draft tree version", "treeVersionId", treeVersionID, "action", action)
		return err
	}
	return nil
}
