package controller

import (
	"github.com/gin-gonic/gin"

	"pricing-rollup/logger"
	"pricing-rollup/service"
)

// RollupController handles HTTP requests for order rollups
type RollupController struct {
	service service.RollupServiceInterface
	log     *logger.Logger
}

// NewRollupController creates a new RollupController
func NewRollupController(svc service.RollupServiceInterface, log *logger.Logger) *RollupController {
	return &RollupController{service: svc, log: log.With("controller", "RollupController")}
}

// GetRollup handles GET /orders/:orderId/rollup
// Example response:
// {
//   "orderId": "ord_1",
//   "materials": [
//     {"skuRef": "MAT-A", "uom": "EA", "qty": "3.3",
//      "sources": [{"lineItemId": "li_1", "sourceNodeId": "n1", "qty": "1.1"},
//                  {"lineItemId": "li_1", "sourceNodeId": "n2", "qty": "2.2"}]}
//   ],
//   "components": [],
//   "warnings": []
// }
func (rc *RollupController) GetRollup(c *gin.Context) {
	ref := orderRef(c)
	rc.log.Debug("📥 GetRollup", "orderId", ref.OrderID)

	rollup, err := rc.service.BuildRollup(c.Request.Context(), ref)
	if err != nil {
		respondServiceError(c, rc.log, "GetRollup", err)
		return
	}
	RespondOK(c, rollup)
}
