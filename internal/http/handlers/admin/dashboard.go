package admin

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
)

// GetDashboardOverview returns order, revenue, stock and delivery-load
// aggregates for a date window, defaulting to the trailing 30 days.
func (h *Handler) GetDashboardOverview(c *gin.Context) {
	startAt, ok := parseDateQuery(c, "start_at")
	if !ok {
		return
	}
	endAt, ok := parseDateQuery(c, "end_at")
	if !ok {
		return
	}
	var start, end time.Time
	if startAt != nil {
		start = *startAt
	}
	if endAt != nil {
		end = endAt.AddDate(0, 0, 1) // inclusive end day
	}

	overview, err := h.DashboardService.GetOverview(start, end)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load dashboard", err)
		return
	}
	response.Success(c, overview)
}

// GetDashboardTrends returns per-day order counts.
func (h *Handler) GetDashboardTrends(c *gin.Context) {
	startAt, ok := parseDateQuery(c, "start_at")
	if !ok {
		return
	}
	endAt, ok := parseDateQuery(c, "end_at")
	if !ok {
		return
	}
	var start, end time.Time
	if startAt != nil {
		start = *startAt
	}
	if endAt != nil {
		end = endAt.AddDate(0, 0, 1)
	}

	trends, err := h.DashboardService.GetOrderTrends(start, end)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load trends", err)
		return
	}
	response.Success(c, gin.H{"trends": trends})
}
