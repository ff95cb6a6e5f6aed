package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/repository"
	"github.com/dairydrop/internal/service"
)

func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		respondError(c, response.CodeNotFound, "order not found", nil)
	case errors.Is(err, service.ErrInvalidTransition):
		respondError(c, response.CodeBadRequest, "invalid order status transition", nil)
	case errors.Is(err, service.ErrOrderNotCancellable):
		respondError(c, response.CodeBadRequest, "order can no longer be cancelled", nil)
	case errors.Is(err, service.ErrInsufficientStock):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	default:
		respondError(c, response.CodeInternal, "order operation failed", err)
	}
}

// AdminListOrders returns the back-office order list.
func (h *Handler) AdminListOrders(c *gin.Context) {
	page, pageSize := parsePagination(c)
	deliveryDate, ok := parseDateQuery(c, "delivery_date")
	if !ok {
		return
	}
	createdFrom, ok := parseDateQuery(c, "created_from")
	if !ok {
		return
	}
	createdTo, ok := parseDateQuery(c, "created_to")
	if !ok {
		return
	}
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	deliveryBoyID, _ := strconv.ParseUint(c.Query("delivery_boy_id"), 10, 64)

	orders, total, err := h.OrderService.ListAdmin(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserID:        uint(userID),
		DeliveryBoyID: uint(deliveryBoyID),
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		Shift:         c.Query("shift"),
		OrderNo:       strings.TrimSpace(c.Query("order_no")),
		DeliveryDate:  deliveryDate,
		CreatedFrom:   createdFrom,
		CreatedTo:     createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load orders", err)
		return
	}
	response.SuccessWithPage(c, gin.H{"orders": orders}, response.NewPagination(page, pageSize, total))
}

// AdminGetOrder returns one order.
func (h *Handler) AdminGetOrder(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetByID(id)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, gin.H{"order": order})
}

// ConfirmOrder moves a pending order to confirmed, decrementing stock
// for every line atomically.
func (h *Handler) ConfirmOrder(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Confirm(id)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, gin.H{"order": order})
}

// AdminCancelOrder cancels an order without the customer-facing cutoff
// checks.
func (h *Handler) AdminCancelOrder(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Cancel(id, 0, true)
	if err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, gin.H{"order": order})
}

// UpdateOrderNotes edits the back-office notes on an order.
func (h *Handler) UpdateOrderNotes(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		AdminNotes string `json:"admin_notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.OrderService.UpdateAdminNotes(id, req.AdminNotes); err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// SetOrderPriority flags an order normal or urgent.
func (h *Handler) SetOrderPriority(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Priority string `json:"priority" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.OrderService.SetPriority(id, req.Priority); err != nil {
		if errors.Is(err, service.ErrInvalidTransition) {
			respondError(c, response.CodeBadRequest, "invalid priority", nil)
			return
		}
		respondOrderError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// SetOrderSequence writes the route position of an order inside its
// household group.
func (h *Handler) SetOrderSequence(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		SequenceNo int `json:"sequence_no"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.OrderService.SetSequence(id, req.SequenceNo); err != nil {
		respondOrderError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}
