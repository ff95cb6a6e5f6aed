package admin

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/repository"
	"github.com/dairydrop/internal/service"
)

// GetAdminUsers lists customers.
func (h *Handler) GetAdminUsers(c *gin.Context) {
	page, pageSize := parsePagination(c)
	createdFrom, ok := parseDateQuery(c, "created_from")
	if !ok {
		return
	}
	createdTo, ok := parseDateQuery(c, "created_to")
	if !ok {
		return
	}
	users, total, err := h.UserAuthService.ListUsers(repository.UserListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     c.Query("keyword"),
		Area:        c.Query("area"),
		Status:      c.Query("status"),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load users", err)
		return
	}
	response.SuccessWithPage(c, gin.H{"users": users}, response.NewPagination(page, pageSize, total))
}

// SetUserStatus enables or disables a customer account.
func (h *Handler) SetUserStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	if err := h.UserAuthService.SetUserStatus(id, req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		case errors.Is(err, service.ErrInvalidTransition):
			respondError(c, response.CodeBadRequest, "invalid status", nil)
		default:
			respondError(c, response.CodeInternal, "user update failed", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}
