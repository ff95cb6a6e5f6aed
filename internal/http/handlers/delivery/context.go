package delivery

import (
	"strconv"

	"github.com/gin-gonic/gin"

	handlershared "github.com/dairydrop/internal/http/handlers/shared"
	"github.com/dairydrop/internal/http/response"
)

func getDeliveryBoyID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "delivery_boy_id")
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || value == 0 {
		respondError(c, response.CodeBadRequest, "invalid id", nil)
		return 0, false
	}
	return uint(value), true
}
