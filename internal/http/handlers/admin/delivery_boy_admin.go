package admin

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/repository"
	"github.com/dairydrop/internal/service"
)

// DeliveryBoyRequest is the delivery-staff create/update payload. An
// empty password on update keeps the existing one.
type DeliveryBoyRequest struct {
	Name     string   `json:"name" binding:"required"`
	Phone    string   `json:"phone" binding:"required"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Areas    []string `json:"areas"`
	Shifts   []string `json:"shifts"`
	IsActive bool     `json:"is_active"`
}

func (r DeliveryBoyRequest) toInput() service.DeliveryBoyInput {
	return service.DeliveryBoyInput{
		Name:     r.Name,
		Phone:    r.Phone,
		Email:    r.Email,
		Password: r.Password,
		Areas:    r.Areas,
		Shifts:   r.Shifts,
		IsActive: r.IsActive,
	}
}

func respondDeliveryBoyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDeliveryBoyNotFound):
		respondError(c, response.CodeNotFound, "delivery boy not found", nil)
	case errors.Is(err, service.ErrPhoneTaken):
		respondError(c, response.CodeBadRequest, "phone is already registered", nil)
	case errors.Is(err, service.ErrWeakPassword):
		respondError(c, response.CodeBadRequest, err.Error(), nil)
	default:
		respondError(c, response.CodeInternal, "delivery boy operation failed", err)
	}
}

// GetDeliveryBoys lists delivery staff.
func (h *Handler) GetDeliveryBoys(c *gin.Context) {
	page, pageSize := parsePagination(c)
	boys, total, err := h.DeliveryBoyService.List(repository.DeliveryBoyListFilter{
		Page:       page,
		PageSize:   pageSize,
		Keyword:    c.Query("keyword"),
		Area:       c.Query("area"),
		Shift:      c.Query("shift"),
		OnlyActive: c.Query("only_active") == "true",
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load delivery boys", err)
		return
	}
	response.SuccessWithPage(c, gin.H{"delivery_boys": boys}, response.NewPagination(page, pageSize, total))
}

// GetDeliveryBoy returns one staff member.
func (h *Handler) GetDeliveryBoy(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	boy, err := h.DeliveryBoyService.GetByID(id)
	if err != nil {
		respondDeliveryBoyError(c, err)
		return
	}
	response.Success(c, gin.H{"delivery_boy": boy})
}

// CreateDeliveryBoy registers a staff member.
func (h *Handler) CreateDeliveryBoy(c *gin.Context) {
	var req DeliveryBoyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	boy, err := h.DeliveryBoyService.Create(req.toInput())
	if err != nil {
		respondDeliveryBoyError(c, err)
		return
	}
	response.Success(c, gin.H{"delivery_boy": boy})
}

// UpdateDeliveryBoy edits a staff member.
func (h *Handler) UpdateDeliveryBoy(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req DeliveryBoyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	boy, err := h.DeliveryBoyService.Update(id, req.toInput())
	if err != nil {
		respondDeliveryBoyError(c, err)
		return
	}
	response.Success(c, gin.H{"delivery_boy": boy})
}

// SetDeliveryBoyActive toggles a staff member's active flag.
func (h *Handler) SetDeliveryBoyActive(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.DeliveryBoyService.SetActive(id, req.IsActive); err != nil {
		respondDeliveryBoyError(c, err)
		return
	}
	response.Success(c, gin.H{"updated": true})
}
