package service

import (
	"time"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
)

// SubscriptionService manages recurring delivery plans. Order
// generation from plans is out of scope; this is plan CRUD only.
type SubscriptionService struct {
	subRepo     repository.SubscriptionRepository
	productRepo repository.ProductRepository
}

// NewSubscriptionService creates a subscription service.
func NewSubscriptionService(subRepo repository.SubscriptionRepository, productRepo repository.ProductRepository) *SubscriptionService {
	return &SubscriptionService{
		subRepo:     subRepo,
		productRepo: productRepo,
	}
}

var validFrequencies = map[string]bool{
	constants.SubscriptionDaily:     true,
	constants.SubscriptionAlternate: true,
	constants.SubscriptionWeekly:    true,
}

// SubscribeInput is the plan creation request.
type SubscribeInput struct {
	UserID        uint
	ProductID     uint
	Quantity      int
	Frequency     string
	DeliveryShift string
	StartDate     time.Time
	EndDate       *time.Time
}

// Subscribe creates an active plan.
func (s *SubscriptionService) Subscribe(input SubscribeInput) (*models.Subscription, error) {
	if input.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !validFrequencies[input.Frequency] {
		return nil, ErrInvalidFrequency
	}
	if input.DeliveryShift != constants.ShiftMorning && input.DeliveryShift != constants.ShiftEvening {
		return nil, ErrInvalidShift
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Status == constants.ProductStatusInactive {
		return nil, ErrProductInactive
	}

	sub := &models.Subscription{
		UserID:        input.UserID,
		ProductID:     input.ProductID,
		Quantity:      input.Quantity,
		Frequency:     input.Frequency,
		DeliveryShift: input.DeliveryShift,
		StartDate:     civilDate(input.StartDate),
		EndDate:       input.EndDate,
		Status:        constants.SubscriptionStatusActive,
	}
	if err := s.subRepo.Create(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Pause suspends an active plan.
func (s *SubscriptionService) Pause(id, userID uint) error {
	return s.setStatus(id, userID, constants.SubscriptionStatusPaused)
}

// Resume reactivates a paused plan.
func (s *SubscriptionService) Resume(id, userID uint) error {
	return s.setStatus(id, userID, constants.SubscriptionStatusActive)
}

// Cancel ends a plan.
func (s *SubscriptionService) Cancel(id, userID uint) error {
	return s.setStatus(id, userID, constants.SubscriptionStatusCancelled)
}

func (s *SubscriptionService) setStatus(id, userID uint, status string) error {
	sub, err := s.subRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return err
	}
	if sub == nil {
		return ErrSubscriptionNotFound
	}
	if sub.Status == constants.SubscriptionStatusCancelled {
		return ErrSubscriptionNotFound
	}
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == constants.SubscriptionStatusPaused {
		updates["paused_at"] = time.Now()
	} else {
		updates["paused_at"] = nil
	}
	return s.subRepo.UpdateFields(id, updates)
}

// ListForUser returns a user's plans.
func (s *SubscriptionService) ListForUser(userID uint, page, pageSize int) ([]models.Subscription, int64, error) {
	return s.subRepo.List(repository.SubscriptionListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
	})
}

// ListAdmin returns plans for the back office.
func (s *SubscriptionService) ListAdmin(filter repository.SubscriptionListFilter) ([]models.Subscription, int64, error) {
	return s.subRepo.List(filter)
}
