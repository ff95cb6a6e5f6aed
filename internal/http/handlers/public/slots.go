package public

import (
	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
)

// GetDeliverySlots returns the next seven bookable days with their
// morning availability and cutoff state.
func (h *Handler) GetDeliverySlots(c *gin.Context) {
	response.Success(c, gin.H{"slots": h.SlotService.AvailableSlots()})
}
