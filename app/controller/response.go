package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pricing-rollup/apierr"
	"pricing-rollup/logger"
	"pricing-rollup/repository"
	"pricing-rollup/service"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	// Context names the guarded operation of a 409 (persist, accept, recompute)
	Context string `json:"context,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// respondServiceError maps a service error onto the envelope. Internal errors are logged and
// their message is not leaked.
func respondServiceError(c *gin.Context, log *logger.Logger, op string, err error) {
	if e, ok := apierr.As(err); ok {
		log.Warn("❌ "+op, "status", e.Status, "code", e.Code, "context", e.Context, "error", e.Error())
		c.JSON(e.Status, ErrorEnvelope{
			Error: APIError{
				Message: e.Error(),
				Code:    e.Code,
				Context: e.Context,
			},
		})
		return
	}
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		RespondError(c, http.StatusNotFound, service.CodeOrderNotFound, err)
		return
	case errors.Is(err, repository.ErrLineItemNotFound):
		RespondError(c, http.StatusNotFound, service.CodeLineItemNotFound, err)
		return
	}
	log.Error("❌ "+op, "error", err)
	RespondError(c, http.StatusInternalServerError, "INTERNAL", errors.New("internal server error"))
}
