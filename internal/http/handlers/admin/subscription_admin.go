package admin

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/repository"
)

// GetAdminSubscriptions lists recurring plans.
func (h *Handler) GetAdminSubscriptions(c *gin.Context) {
	page, pageSize := parsePagination(c)
	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	subscriptions, total, err := h.SubscriptionService.ListAdmin(repository.SubscriptionListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load subscriptions", err)
		return
	}
	response.SuccessWithPage(c, gin.H{"subscriptions": subscriptions}, response.NewPagination(page, pageSize, total))
}
