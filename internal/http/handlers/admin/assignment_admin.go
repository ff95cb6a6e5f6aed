package admin

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
	"github.com/dairydrop/internal/service"
)

func respondAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		respondError(c, response.CodeBadRequest, "user not found", nil)
	case errors.Is(err, service.ErrDeliveryBoyNotFound):
		respondError(c, response.CodeBadRequest, "delivery boy not found", nil)
	case errors.Is(err, service.ErrDeliveryBoyInactive):
		respondError(c, response.CodeBadRequest, "delivery boy is inactive", nil)
	case errors.Is(err, service.ErrAssignmentNotFound):
		respondError(c, response.CodeNotFound, "assignment not found", nil)
	case errors.Is(err, service.ErrAssignmentExists):
		respondError(c, response.CodeBadRequest, "user already has an active assignment", nil)
	case errors.Is(err, service.ErrSameDeliveryBoy):
		respondError(c, response.CodeBadRequest, "source and target delivery boy are the same", nil)
	case errors.Is(err, service.ErrInvalidReassignMode):
		respondError(c, response.CodeBadRequest, "invalid reassignment mode", nil)
	case errors.Is(err, service.ErrInvalidDateRange):
		respondError(c, response.CodeBadRequest, "invalid date range", nil)
	default:
		respondError(c, response.CodeInternal, "assignment operation failed", err)
	}
}

// AssignRequest maps a household to a delivery boy.
type AssignRequest struct {
	UserID        uint     `json:"user_id" binding:"required"`
	DeliveryBoyID uint     `json:"delivery_boy_id" binding:"required"`
	Shifts        []string `json:"shifts"`
	Areas         []string `json:"areas"`
	Sequence      int      `json:"sequence"`
	Notes         string   `json:"notes"`
}

// AssignUser creates the household's active assignment and stamps the
// delivery boy onto every open order.
func (h *Handler) AssignUser(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	assignment, err := h.AssignmentService.Assign(service.AssignInput{
		UserID:        req.UserID,
		DeliveryBoyID: req.DeliveryBoyID,
		Shifts:        req.Shifts,
		Areas:         req.Areas,
		Sequence:      req.Sequence,
		Notes:         req.Notes,
		AssignedBy:    models.ActorAdmin,
	})
	if err != nil {
		respondAssignmentError(c, err)
		return
	}
	response.Success(c, gin.H{"assignment": assignment})
}

// ReassignRequest moves a household to another delivery boy, either
// entirely or only for a date range of open orders.
type ReassignRequest struct {
	UserID   uint   `json:"user_id" binding:"required"`
	ToBoyID  uint   `json:"to_delivery_boy_id" binding:"required"`
	Mode     string `json:"mode" binding:"required"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
	Notes    string `json:"notes"`
}

// ReassignUser moves a household between delivery boys.
func (h *Handler) ReassignUser(c *gin.Context) {
	var req ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	var dateFrom, dateTo *time.Time
	if req.DateFrom != "" {
		parsed, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid date_from", nil)
			return
		}
		dateFrom = &parsed
	}
	if req.DateTo != "" {
		parsed, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid date_to", nil)
			return
		}
		dateTo = &parsed
	}

	assignment, err := h.AssignmentService.Reassign(service.ReassignInput{
		UserID:     req.UserID,
		ToBoyID:    req.ToBoyID,
		Mode:       req.Mode,
		DateFrom:   dateFrom,
		DateTo:     dateTo,
		Notes:      req.Notes,
		AssignedBy: models.ActorAdmin,
	})
	if err != nil {
		respondAssignmentError(c, err)
		return
	}
	response.Success(c, gin.H{"assignment": assignment})
}

// RemoveAssignment deactivates the household's active assignment and
// strips the delivery boy from its open orders.
func (h *Handler) RemoveAssignment(c *gin.Context) {
	userID, ok := parseUintParam(c, "user_id")
	if !ok {
		return
	}
	if err := h.AssignmentService.Remove(userID); err != nil {
		respondAssignmentError(c, err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// BulkTransferRequest moves every household from one delivery boy to
// another, e.g. when staff leave.
type BulkTransferRequest struct {
	FromBoyID uint `json:"from_delivery_boy_id" binding:"required"`
	ToBoyID   uint `json:"to_delivery_boy_id" binding:"required"`
}

// BulkTransferAssignments migrates all active assignments between two
// delivery boys along with their open orders.
func (h *Handler) BulkTransferAssignments(c *gin.Context) {
	var req BulkTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	moved, err := h.AssignmentService.BulkTransfer(req.FromBoyID, req.ToBoyID, models.ActorAdmin)
	if err != nil {
		respondAssignmentError(c, err)
		return
	}
	response.Success(c, gin.H{"transferred": moved})
}

// SetAssignmentSequence writes a household's position in the delivery
// boy's route.
func (h *Handler) SetAssignmentSequence(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Sequence int `json:"sequence"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.AssignmentService.SetUserSequence(id, req.Sequence); err != nil {
		respondAssignmentError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// GetAssignments lists assignments.
func (h *Handler) GetAssignments(c *gin.Context) {
	page, pageSize := parsePagination(c)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	deliveryBoyID, _ := strconv.ParseUint(c.Query("delivery_boy_id"), 10, 64)
	assignments, total, err := h.AssignmentService.List(repository.AssignmentListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserID:        uint(userID),
		DeliveryBoyID: uint(deliveryBoyID),
		OnlyActive:    c.Query("only_active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load assignments", err)
		return
	}
	response.SuccessWithPage(c, gin.H{"assignments": assignments}, response.NewPagination(page, pageSize, total))
}

// GetUserAssignment returns the household's active assignment.
func (h *Handler) GetUserAssignment(c *gin.Context) {
	userID, ok := parseUintParam(c, "user_id")
	if !ok {
		return
	}
	assignment, err := h.AssignmentService.GetActiveForUser(userID)
	if err != nil {
		respondAssignmentError(c, err)
		return
	}
	response.Success(c, gin.H{"assignment": assignment})
}
