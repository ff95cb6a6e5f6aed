package delivery

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/service"
)

// GetWorkQueue returns the staff member's confirmed orders for one date
// and shift, grouped per household in route order with urgent orders
// first.
func (h *Handler) GetWorkQueue(c *gin.Context) {
	boyID, ok := getDeliveryBoyID(c)
	if !ok {
		return
	}
	date := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid date", nil)
			return
		}
		date = parsed
	}
	shift := c.DefaultQuery("shift", constants.ShiftMorning)
	if shift != constants.ShiftMorning && shift != constants.ShiftEvening {
		respondError(c, response.CodeBadRequest, "invalid delivery shift", nil)
		return
	}

	orders, err := h.OrderService.WorkQueue(boyID, date, shift)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load work queue", err)
		return
	}
	response.Success(c, gin.H{"orders": orders})
}

// GetRoster returns the staff member's active household assignments in
// route order.
func (h *Handler) GetRoster(c *gin.Context) {
	boyID, ok := getDeliveryBoyID(c)
	if !ok {
		return
	}
	assignments, err := h.AssignmentService.Roster(boyID)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load roster", err)
		return
	}
	response.Success(c, gin.H{"assignments": assignments})
}

// MarkDeliveredRequest is the delivery confirmation payload.
type MarkDeliveredRequest struct {
	Notes string   `json:"notes"`
	Lat   *float64 `json:"lat"`
	Lng   *float64 `json:"lng"`
}

// MarkDelivered completes one of the staff member's assigned orders.
func (h *Handler) MarkDelivered(c *gin.Context) {
	boyID, ok := getDeliveryBoyID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req MarkDeliveredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	order, err := h.OrderService.MarkDelivered(service.MarkDeliveredInput{
		OrderID:       orderID,
		DeliveryBoyID: boyID,
		Notes:         req.Notes,
		Lat:           req.Lat,
		Lng:           req.Lng,
	})
	if err != nil {
		respondDeliveryError(c, err)
		return
	}
	response.Success(c, gin.H{"order": order})
}
