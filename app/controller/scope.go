package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"pricing-rollup/service"
)

const (
	HeaderOrganizationID = "X-Organization-Id"
	HeaderUserID         = "X-User-Id"

	CodeOrganizationRequired = "ORGANIZATION_REQUIRED"

	ctxOrganizationID = "organizationId"
	ctxUserID         = "userId"
)

// RequireOrganization rejects requests without a tenant header and stores the tenant and the
// optional acting user on the gin context
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID := strings.TrimSpace(c.GetHeader(HeaderOrganizationID))
		if orgID == "" {
			RespondError(c, http.StatusBadRequest, CodeOrganizationRequired,
				errors.New(HeaderOrganizationID+" header is required"))
			c.Abort()
			return
		}
		c.Set(ctxOrganizationID, orgID)
		if userID := strings.TrimSpace(c.GetHeader(HeaderUserID)); userID != "" {
			c.Set(ctxUserID, userID)
		}
		c.Next()
	}
}

// orderRef builds the service scope from the path and the values RequireOrganization stored
func orderRef(c *gin.Context) service.OrderRef {
	ref := service.OrderRef{
		OrganizationID: c.GetString(ctxOrganizationID),
		OrderID:        strings.TrimSpace(c.Param("orderId")),
	}
	if userID := c.GetString(ctxUserID); userID != "" {
		ref.UserID = &userID
	}
	return ref
}
