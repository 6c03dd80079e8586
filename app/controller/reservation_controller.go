package controller

import (
	"github.com/gin-gonic/gin"

	"pricing-rollup/logger"
	"pricing-rollup/service"
)

// ReservationController handles HTTP requests for inventory reservations
type ReservationController struct {
	service service.ReservationServiceInterface
	log     *logger.Logger
}

// NewReservationController creates a new ReservationController
func NewReservationController(svc service.ReservationServiceInterface, log *logger.Logger) *ReservationController {
	return &ReservationController{service: svc, log: log.With("controller", "ReservationController")}
}

// Reserve handles POST /orders/:orderId/reservations
// Example response:
// {
//   "orderId": "ord_1",
//   "inserted": [
//     {"id": "4b0c...", "organizationId": "org_1", "orderId": "ord_1", "orderLineItemId": "li_1",
//      "sourceType": "PBV2_MATERIAL", "sourceKey": "MAT-A", "uom": "EA", "qty": "3.30",
//      "status": "RESERVED", "createdAt": "2026-01-15T10:30:00Z", "updatedAt": "2026-01-15T10:30:00Z"}
//   ],
//   "alreadyReserved": 0,
//   "warnings": []
// }
// Returns 409 PBV2_TREE_VERSION_DRAFT when a line item is priced against a DRAFT tree version.
func (rc *ReservationController) Reserve(c *gin.Context) {
	ref := orderRef(c)
	rc.log.Info("📥 Reserve", "orderId", ref.OrderID)

	resp, err := rc.service.Reserve(c.Request.Context(), ref)
	if err != nil {
		respondServiceError(c, rc.log, "Reserve", err)
		return
	}
	RespondOK(c, resp)
}

// Release handles POST /orders/:orderId/reservations/release
// Example response:
// {"orderId": "ord_1", "released": [{"id": "4b0c...", "status": "RELEASED", ...}]}
func (rc *ReservationController) Release(c *gin.Context) {
	ref := orderRef(c)
	rc.log.Info("📥 Release", "orderId", ref.OrderID)

	resp, err := rc.service.Release(c.Request.Context(), ref)
	if err != nil {
		respondServiceError(c, rc.log, "Release", err)
		return
	}
	RespondOK(c, resp)
}

// Reconcile handles POST /orders/:orderId/reservations/reconcile
// Example response:
// {"orderId": "ord_1", "inserted": [...], "released": [...], "warnings": []}
func (rc *ReservationController) Reconcile(c *gin.Context) {
	ref := orderRef(c)
	rc.log.Info("📥 Reconcile", "orderId", ref.OrderID)

	resp, err := rc.service.Reconcile(c.Request.Context(), ref)
	if err != nil {
		respondServiceError(c, rc.log, "Reconcile", err)
		return
	}
	RespondOK(c, resp)
}

// GetRollupView handles GET /orders/:orderId/reservations/rollup?status=RESERVED|RELEASED
// Example response:
// {"items": [{"sourceKey": "MAT-A", "uom": "EA", "qty": "3.30",
//             "breakdown": [{"sourceType": "PBV2_MATERIAL", "qty": "3.30"}]}]}
func (rc *ReservationController) GetRollupView(c *gin.Context) {
	ref := orderRef(c)
	view, err := rc.service.View(c.Request.Context(), ref, c.Query("status"))
	if err != nil {
		respondServiceError(c, rc.log, "GetRollupView", err)
		return
	}
	RespondOK(c, view)
}
