package public

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/repository"
	"github.com/dairydrop/internal/service"
)

// OrderItemRequest is one requested line.
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateOrderRequest is the checkout payload. With FromCart set the
// items come from the cart and the request lines are ignored.
type CreateOrderRequest struct {
	Items         []OrderItemRequest `json:"items"`
	PaymentMethod string             `json:"payment_method" binding:"required"`
	DeliveryDate  string             `json:"delivery_date" binding:"required"` // YYYY-MM-DD
	DeliveryShift string             `json:"delivery_shift" binding:"required"`
	CustomerNotes string             `json:"customer_notes"`
	FromCart      bool               `json:"from_cart"`
}

// CreateOrder places a new order in status pending.
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	deliveryDate, err := time.Parse("2006-01-02", req.DeliveryDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid delivery date", nil)
		return
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	if req.FromCart {
		items, err = h.CartService.CheckoutItems(uid)
		if err != nil {
			if errors.Is(err, service.ErrCartEmpty) {
				respondError(c, response.CodeBadRequest, "cart is empty", nil)
				return
			}
			respondError(c, response.CodeInternal, "failed to load cart", err)
			return
		}
	} else {
		for _, item := range req.Items {
			items = append(items, service.CreateOrderItem{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}
	}

	order, err := h.OrderService.Create(service.CreateOrderInput{
		UserID:        uid,
		Items:         items,
		PaymentMethod: req.PaymentMethod,
		DeliveryDate:  deliveryDate,
		DeliveryShift: req.DeliveryShift,
		CustomerNotes: req.CustomerNotes,
		FromCart:      req.FromCart,
	})
	if err != nil {
		respondWithMappedError(c, err, orderCreateErrorRules, response.CodeInternal, "order creation failed")
		return
	}
	response.Success(c, gin.H{"order": order})
}

// ListOrders returns the customer's orders, optionally filtered by
// status.
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	orders, total, err := h.OrderService.ListForUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load orders", err)
		return
	}
	response.SuccessWithPage(c, gin.H{"orders": orders}, response.NewPagination(page, pageSize, total))
}

// GetOrder returns one of the customer's orders.
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetForUser(orderID, uid)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load order", err)
		return
	}
	response.Success(c, gin.H{"order": order})
}

// CancelOrder cancels the customer's own order inside the shift's
// cancellation window.
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.Cancel(orderID, uid, false)
	if err != nil {
		respondWithMappedError(c, err, orderCancelErrorRules, response.CodeInternal, "order cancellation failed")
		return
	}
	response.Success(c, gin.H{"order": order})
}
