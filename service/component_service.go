package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pricing-rollup/apierr"
	"pricing-rollup/logger"
	"pricing-rollup/models"
	"pricing-rollup/pricing"
	"pricing-rollup/repository"
	"pricing-rollup/utils"
)

// ComponentService records components a user accepted onto a line item
type ComponentService struct {
	rollups    *RollupService
	components repository.ComponentRepositoryInterface
	log        *logger.Logger
}

// NewComponentService creates a new ComponentService
func NewComponentService(rollups *RollupService, components repository.ComponentRepositoryInterface, log *logger.Logger) *ComponentService {
	return &ComponentService{
		rollups:    rollups,
		components: components,
		log:        log.With("service", "ComponentService"),
	}
}

// Ensure ComponentService implements ComponentServiceInterface
var _ ComponentServiceInterface = (*ComponentService)(nil)

// Accept validates the request, applies the draft guard to the line item's tree version and
// stores the component
func (s *ComponentService) Accept(ctx context.Context, ref OrderRef, lineItemID string, req *models.AcceptComponentRequest) (*models.AcceptedComponent, error) {
	if req == nil {
		return nil, apierr.BadRequest(CodeInvalidArgument, fmt.Errorf("request body is required"))
	}
	if err := req.Validate(); err != nil {
		return nil, apierr.BadRequest(CodeInvalidArgument, err)
	}
	if err := s.rollups.requireOrder(ctx, ref); err != nil {
		return nil, err
	}

	lineItem, err := s.rollups.lineItems.GetByID(ctx, ref.OrganizationID, ref.OrderID, lineItemID)
	if err != nil {
		if errors.Is(err, repository.ErrLineItemNotFound) {
			return nil, apierr.NotFound(CodeLineItemNotFound, err)
		}
		return nil, fmt.Errorf("failed to load line item: %w", err)
	}
	if err := s.rollups.guardTreeVersions(ctx, ref.OrganizationID, []models.OrderLineItem{*lineItem}, pricing.GuardAccept); err != nil {
		return nil, err
	}

	component := &models.AcceptedComponent{
		Kind:              req.Kind,
		SkuRef:            utils.StringPtr(utils.Deref(req.SkuRef)),
		ChildProductID:    utils.StringPtr(utils.Deref(req.ChildProductID)),
		Title:             strings.TrimSpace(req.Title),
		Qty:               req.Qty,
		UnitPriceCents:    req.UnitPriceCents,
		AmountCents:       req.AmountCents,
		InvoiceVisibility: strings.TrimSpace(req.InvoiceVisibility),
		LineItemID:        lineItem.ID,
	}
	if err := s.components.Insert(ctx, ref.OrganizationID, ref.OrderID, component, ref.UserID); err != nil {
		return nil, fmt.Errorf("failed to accept component: %w", err)
	}
	return component, nil
}
