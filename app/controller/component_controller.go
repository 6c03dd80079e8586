package controller

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pricing-rollup/logger"
	"pricing-rollup/models"
	"pricing-rollup/service"
)

// ComponentController handles HTTP requests for accepted components
type ComponentController struct {
	service service.ComponentServiceInterface
	log     *logger.Logger
}

// NewComponentController creates a new ComponentController
func NewComponentController(svc service.ComponentServiceInterface, log *logger.Logger) *ComponentController {
	return &ComponentController{service: svc, log: log.With("controller", "ComponentController")}
}

// Accept handles POST /orders/:orderId/line-items/:lineItemId/components
// Example request:
// {"kind": "inlineSku", "skuRef": "GROMMET-10", "title": "Grommets", "qty": "4", "invoiceVisibility": "hidden"}
// Example response:
// {"id": "9f1e...", "kind": "inlineSku", "skuRef": "GROMMET-10", "title": "Grommets", "qty": "4",
//  "invoiceVisibility": "hidden", "lineItemId": "li_1"}
func (cc *ComponentController) Accept(c *gin.Context) {
	ref := orderRef(c)
	lineItemID := strings.TrimSpace(c.Param("lineItemId"))
	cc.log.Info("📥 Accept", "orderId", ref.OrderID, "lineItemId", lineItemID)

	var req models.AcceptComponentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, service.CodeInvalidArgument, fmt.Errorf("invalid request body: %w", err))
		return
	}

	component, err := cc.service.Accept(c.Request.Context(), ref, lineItemID, &req)
	if err != nil {
		respondServiceError(c, cc.log, "Accept", err)
		return
	}
	c.JSON(http.StatusCreated, component)
}
