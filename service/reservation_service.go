package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pricing-rollup/apierr"
	"pricing-rollup/inventory"
	"pricing-rollup/logger"
	"pricing-rollup/models"
	"pricing-rollup/pricing"
	"pricing-rollup/repository"
	"pricing-rollup/utils"
)

// ReservationService turns order rollups into inventory reservation rows
type ReservationService struct {
	rollups      *RollupService
	reservations repository.ReservationRepositoryInterface
	log          *logger.Logger
}

// NewReservationService creates a new ReservationService
func NewReservationService(rollups *RollupService, reservations repository.ReservationRepositoryInterface, log *logger.Logger) *ReservationService {
	return &ReservationService{
		rollups:      rollups,
		reservations: reservations,
		log:          log.With("service", "ReservationService"),
	}
}

// Ensure ReservationService implements ReservationServiceInterface
var _ ReservationServiceInterface = (*ReservationService)(nil)

// Reserve persists the rollup as reservations. Keys already held by a RESERVED row are skipped.
// The rollup is built inside the ledger transaction, after the order's line items are locked.
func (s *ReservationService) Reserve(ctx context.Context, ref OrderRef) (*models.ReserveOrderResponse, error) {
	s.log.Info("📦 Reserve", "orderId", ref.OrderID)
	if err := s.rollups.requireOrder(ctx, ref); err != nil {
		return nil, err
	}

	var desired []models.InventoryReservationRow
	var rollup *models.OrderRollup
	changes, err := s.reservations.ApplyChanges(ctx, ref.OrganizationID, ref.OrderID,
		func(existing []models.InventoryReservationRow) ([]models.InventoryReservationRow, []models.InventoryReservationRow, error) {
			var err error
			desired, rollup, err = s.desired(ctx, ref, pricing.GuardPersist)
			if err != nil {
				return nil, nil, err
			}
			return inventory.DiffForInsert(desired, existing), nil, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to reserve order %s: %w", ref.OrderID, err)
	}

	resp := &models.ReserveOrderResponse{
		OrderID:         ref.OrderID,
		Inserted:        changes.Inserted,
		AlreadyReserved: len(desired) - len(changes.Inserted),
		Warnings:        rollup.Warnings,
	}
	s.log.Info("✅ Reserve", "orderId", ref.OrderID, "inserted", len(resp.Inserted), "alreadyReserved", resp.AlreadyReserved)
	return resp, nil
}

// Release flips every RESERVED row of the order, including manual ones
func (s *ReservationService) Release(ctx context.Context, ref OrderRef) (*models.ReleaseOrderResponse, error) {
	s.log.Info("📦 Release", "orderId", ref.OrderID)
	if err := s.rollups.requireOrder(ctx, ref); err != nil {
		return nil, err
	}

	changes, err := s.reservations.ApplyChanges(ctx, ref.OrganizationID, ref.OrderID,
		func(existing []models.InventoryReservationRow) ([]models.InventoryReservationRow, []models.InventoryReservationRow, error) {
			var active []models.InventoryReservationRow
			for _, r := range existing {
				if r.Status == models.ReservationReserved {
					active = append(active, r)
				}
			}
			release := inventory.ApplyRelease(active)
			inventory.SortRows(release)
			return nil, release, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to release order %s: %w", ref.OrderID, err)
	}

	s.log.Info("✅ Release", "orderId", ref.OrderID, "released", len(changes.Released))
	return &models.ReleaseOrderResponse{OrderID: ref.OrderID, Released: changes.Released}, nil
}

// Reconcile brings engine-derived reservations back in line with the current rollup. Like
// Reserve, the rollup is built while the order's line items are locked.
func (s *ReservationService) Reconcile(ctx context.Context, ref OrderRef) (*models.ReconcileOrderResponse, error) {
	s.log.Info("📦 Reconcile", "orderId", ref.OrderID)
	if err := s.rollups.requireOrder(ctx, ref); err != nil {
		return nil, err
	}

	var rollup *models.OrderRollup
	changes, err := s.reservations.ApplyChanges(ctx, ref.OrganizationID, ref.OrderID,
		func(existing []models.InventoryReservationRow) ([]models.InventoryReservationRow, []models.InventoryReservationRow, error) {
			desired, built, err := s.desired(ctx, ref, pricing.GuardRecompute)
			if err != nil {
				return nil, nil, err
			}
			rollup = built
			plan := inventory.Reconcile(desired, existing)
			return plan.Insert, plan.Release, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile order %s: %w", ref.OrderID, err)
	}

	s.log.Info("✅ Reconcile", "orderId", ref.OrderID, "inserted", len(changes.Inserted), "released", len(changes.Released))
	return &models.ReconcileOrderResponse{
		OrderID:  ref.OrderID,
		Inserted: changes.Inserted,
		Released: changes.Released,
		Warnings: rollup.Warnings,
	}, nil
}

// View summarizes the order's persisted reservations. status is RESERVED (default) or RELEASED.
func (s *ReservationService) View(ctx context.Context, ref OrderRef, status string) (*models.ReservationRollupView, error) {
	st, err := parseReservationStatus(status)
	if err != nil {
		return nil, err
	}
	if err := s.rollups.requireOrder(ctx, ref); err != nil {
		return nil, err
	}

	rows, err := s.reservations.ListByOrder(ctx, ref.OrganizationID, ref.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}
	view, err := inventory.BuildRollupView(rows, st)
	if err != nil {
		return nil, quantityError(err)
	}
	return &view, nil
}

// desired builds the rollup, guards its tree versions and maps it to reservation rows
func (s *ReservationService) desired(ctx context.Context, ref OrderRef, action pricing.GuardAction) ([]models.InventoryReservationRow, *models.OrderRollup, error) {
	rollup, lineItems, err := s.rollups.build(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	if err := s.rollups.guardTreeVersions(ctx, ref.OrganizationID, lineItems, action); err != nil {
		return nil, nil, err
	}

	rows, err := inventory.BuildReservationsFromRollup(inventory.BuildParams{
		OrganizationID:  ref.OrganizationID,
		OrderID:         ref.OrderID,
		Rollup:          rollup,
		CreatedByUserID: ref.UserID,
	})
	if err != nil {
		return nil, nil, quantityError(err)
	}
	return rows, rollup, nil
}

// quantityError surfaces totals the ledger cannot store as a 422
func quantityError(err error) error {
	if errors.Is(err, utils.ErrQuantityOutOfRange) {
		return apierr.Unprocessable(CodeQuantityOutOfRange, err)
	}
	return err
}

func parseReservationStatus(status string) (models.ReservationStatus, error) {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "", string(models.ReservationReserved):
		return models.ReservationReserved, nil
	case string(models.ReservationReleased):
		return models.ReservationReleased, nil
	}
	return "", apierr.BadRequest(CodeInvalidArgument, fmt.Errorf("status must be RESERVED or RELEASED, got %q", status))
}
