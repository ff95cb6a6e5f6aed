package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
	"github.com/dairydrop/internal/service"
)

func respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		respondError(c, response.CodeNotFound, "payment session not found", nil)
	case errors.Is(err, service.ErrPaymentNotVerifiable):
		respondError(c, response.CodeBadRequest, "payment is not awaiting verification", nil)
	default:
		respondError(c, response.CodeInternal, "payment operation failed", err)
	}
}

// GetAdminPayments lists payment sessions.
func (h *Handler) GetAdminPayments(c *gin.Context) {
	page, pageSize := parsePagination(c)
	createdFrom, ok := parseDateQuery(c, "created_from")
	if !ok {
		return
	}
	createdTo, ok := parseDateQuery(c, "created_to")
	if !ok {
		return
	}
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	payments, total, err := h.PaymentService.ListAdmin(repository.PaymentListFilter{
		Page:               page,
		PageSize:           pageSize,
		UserID:             uint(userID),
		Status:             c.Query("status"),
		VerificationStatus: c.Query("verification_status"),
		ReferenceNo:        strings.TrimSpace(c.Query("reference_no")),
		CreatedFrom:        createdFrom,
		CreatedTo:          createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load payments", err)
		return
	}
	response.SuccessWithPage(c, gin.H{"payments": payments}, response.NewPagination(page, pageSize, total))
}

// GetVerificationQueue lists completed sessions awaiting manual review.
func (h *Handler) GetVerificationQueue(c *gin.Context) {
	page, pageSize := parsePagination(c)
	payments, total, err := h.PaymentService.VerificationQueue(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load verification queue", err)
		return
	}
	response.SuccessWithPage(c, gin.H{"payments": payments}, response.NewPagination(page, pageSize, total))
}

// VerifyPayment approves a completed session, marking the covered
// orders paid.
func (h *Handler) VerifyPayment(c *gin.Context) {
	payment, err := h.PaymentService.Verify(c.Param("payment_id"), models.ActorAdmin)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Success(c, gin.H{"payment": payment})
}

// RejectPaymentRequest carries the rejection reason.
type RejectPaymentRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// RejectPayment declines a completed session, returning the covered
// orders to payment pending.
func (h *Handler) RejectPayment(c *gin.Context) {
	var req RejectPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	payment, err := h.PaymentService.Reject(c.Param("payment_id"), models.ActorAdmin, req.Reason)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	response.Success(c, gin.H{"payment": payment})
}
