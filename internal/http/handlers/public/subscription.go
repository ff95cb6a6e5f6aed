package public

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/service"
)

// CreateSubscriptionRequest is the recurring plan payload.
type CreateSubscriptionRequest struct {
	ProductID     uint   `json:"product_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required"`
	Frequency     string `json:"frequency" binding:"required"`
	DeliveryShift string `json:"delivery_shift" binding:"required"`
	StartDate     string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate       string `json:"end_date"`
}

// CreateSubscription starts a recurring delivery plan.
func (h *Handler) CreateSubscription(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid start date", nil)
		return
	}
	var endDate *time.Time
	if req.EndDate != "" {
		parsed, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid end date", nil)
			return
		}
		endDate = &parsed
	}

	subscription, err := h.SubscriptionService.Subscribe(service.SubscribeInput{
		UserID:        uid,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		Frequency:     req.Frequency,
		DeliveryShift: req.DeliveryShift,
		StartDate:     startDate,
		EndDate:       endDate,
	})
	if err != nil {
		respondWithMappedError(c, err, subscriptionErrorRules, response.CodeInternal, "subscription creation failed")
		return
	}
	response.Success(c, gin.H{"subscription": subscription})
}

// ListSubscriptions returns the customer's plans.
func (h *Handler) ListSubscriptions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	page, pageSize := parsePagination(c)
	subscriptions, total, err := h.SubscriptionService.ListForUser(uid, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "failed to load subscriptions", err)
		return
	}
	response.SuccessWithPage(c, gin.H{"subscriptions": subscriptions}, response.NewPagination(page, pageSize, total))
}

// PauseSubscription pauses an active plan.
func (h *Handler) PauseSubscription(c *gin.Context) {
	h.setSubscriptionStatus(c, h.SubscriptionService.Pause)
}

// ResumeSubscription reactivates a paused plan.
func (h *Handler) ResumeSubscription(c *gin.Context) {
	h.setSubscriptionStatus(c, h.SubscriptionService.Resume)
}

// CancelSubscription terminates a plan.
func (h *Handler) CancelSubscription(c *gin.Context) {
	h.setSubscriptionStatus(c, h.SubscriptionService.Cancel)
}

func (h *Handler) setSubscriptionStatus(c *gin.Context, apply func(id, userID uint) error) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	if err := apply(id, uid); err != nil {
		respondWithMappedError(c, err, subscriptionErrorRules, response.CodeInternal, "subscription update failed")
		return
	}
	response.Success(c, gin.H{"updated": true})
}
