package delivery

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/service"
)

func respondDeliveryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "order not found", nil)
	case errors.Is(err, service.ErrOrderNotAssigned):
		respondError(c, response.CodeForbidden, "order is not assigned to you", nil)
	case errors.Is(err, service.ErrInvalidTransition):
		respondError(c, response.CodeBadRequest, "order is not out for delivery", nil)
	case errors.Is(err, service.ErrOutsideDeliveryWindow):
		respondError(c, response.CodeBadRequest, "outside the delivery window for this shift", nil)
	default:
		respondError(c, response.CodeInternal, "delivery confirmation failed", err)
	}
}
