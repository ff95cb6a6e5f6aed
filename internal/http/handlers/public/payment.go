package public

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/service"
)

// CreatePaymentRequest starts a UPI session over one or more orders.
type CreatePaymentRequest struct {
	OrderIDs []uint `json:"order_ids" binding:"required"`
}

// CreatePayment opens a UPI payment session covering the given orders
// and returns the deep link plus QR code.
func (h *Handler) CreatePayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	payment, err := h.PaymentService.CreateSession(uid, req.OrderIDs)
	if err != nil {
		respondWithMappedError(c, err, paymentCreateErrorRules, response.CodeInternal, "payment session creation failed")
		return
	}
	response.Success(c, gin.H{"payment": payment})
}

// GetPayment returns a session, expiring it on read when overdue.
func (h *Handler) GetPayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	payment, err := h.PaymentService.GetSession(c.Param("payment_id"), uid)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			respondError(c, response.CodeNotFound, "payment session not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "failed to load payment session", err)
		return
	}
	response.Success(c, gin.H{"payment": payment})
}

// CompletePaymentRequest submits the customer-side UPI transaction id.
type CompletePaymentRequest struct {
	UPITransactionID string `json:"upi_transaction_id" binding:"required"`
}

// CompletePayment marks a session completed pending admin
// verification.
func (h *Handler) CompletePayment(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CompletePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	payment, err := h.PaymentService.MarkCompleted(c.Param("payment_id"), uid, req.UPITransactionID)
	if err != nil {
		respondWithMappedError(c, err, paymentCompleteErrorRules, response.CodeInternal, "payment completion failed")
		return
	}
	response.Success(c, gin.H{"payment": payment})
}
