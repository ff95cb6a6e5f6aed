package service

import (
	"strings"
	"time"

	"github.com/dairydrop/internal/logger"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
)

// DeliveryBoyService is the admin management surface for delivery staff.
type DeliveryBoyService struct {
	deliveryBoyRepo repository.DeliveryBoyRepository
	authSvc         *AuthService
}

// NewDeliveryBoyService creates a delivery boy service.
func NewDeliveryBoyService(deliveryBoyRepo repository.DeliveryBoyRepository, authSvc *AuthService) *DeliveryBoyService {
	return &DeliveryBoyService{
		deliveryBoyRepo: deliveryBoyRepo,
		authSvc:         authSvc,
	}
}

// DeliveryBoyInput is the create/update payload.
type DeliveryBoyInput struct {
	Name     string
	Phone    string
	Email    string
	Password string
	Areas    []string
	Shifts   []string
	IsActive bool
}

// Create registers a delivery boy.
func (s *DeliveryBoyService) Create(input DeliveryBoyInput) (*models.DeliveryBoy, error) {
	phone := strings.TrimSpace(input.Phone)
	existing, err := s.deliveryBoyRepo.GetByPhone(phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPhoneTaken
	}
	hash := ""
	if input.Password != "" {
		if hash, err = s.authSvc.HashPassword(input.Password); err != nil {
			return nil, err
		}
	}
	boy := &models.DeliveryBoy{
		Name:         strings.TrimSpace(input.Name),
		Phone:        phone,
		Email:        strings.TrimSpace(input.Email),
		PasswordHash: hash,
		Areas:        models.StringArray(input.Areas),
		Shifts:       models.StringArray(input.Shifts),
		IsActive:     input.IsActive,
	}
	if err := s.deliveryBoyRepo.Create(boy); err != nil {
		return nil, err
	}
	logger.Infow("delivery_boy_created", "delivery_boy_id", boy.ID, "phone", phone)
	return boy, nil
}

// Update edits a delivery boy; an empty password leaves the hash alone.
func (s *DeliveryBoyService) Update(id uint, input DeliveryBoyInput) (*models.DeliveryBoy, error) {
	boy, err := s.deliveryBoyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if boy == nil {
		return nil, ErrDeliveryBoyNotFound
	}
	phone := strings.TrimSpace(input.Phone)
	if phone != boy.Phone {
		existing, err := s.deliveryBoyRepo.GetByPhone(phone)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != id {
			return nil, ErrPhoneTaken
		}
	}
	boy.Name = strings.TrimSpace(input.Name)
	boy.Phone = phone
	boy.Email = strings.TrimSpace(input.Email)
	boy.Areas = models.StringArray(input.Areas)
	boy.Shifts = models.StringArray(input.Shifts)
	boy.IsActive = input.IsActive
	if input.Password != "" {
		hash, err := s.authSvc.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		boy.PasswordHash = hash
	}
	if err := s.deliveryBoyRepo.Update(boy); err != nil {
		return nil, err
	}
	return boy, nil
}

// SetActive toggles availability without touching the rest.
func (s *DeliveryBoyService) SetActive(id uint, active bool) error {
	boy, err := s.deliveryBoyRepo.GetByID(id)
	if err != nil {
		return err
	}
	if boy == nil {
		return ErrDeliveryBoyNotFound
	}
	return s.deliveryBoyRepo.UpdateFields(id, map[string]interface{}{
		"is_active":  active,
		"updated_at": time.Now(),
	})
}

// GetByID returns one delivery boy.
func (s *DeliveryBoyService) GetByID(id uint) (*models.DeliveryBoy, error) {
	boy, err := s.deliveryBoyRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if boy == nil {
		return nil, ErrDeliveryBoyNotFound
	}
	return boy, nil
}

// List returns delivery staff matching the filter.
func (s *DeliveryBoyService) List(filter repository.DeliveryBoyListFilter) ([]models.DeliveryBoy, int64, error) {
	return s.deliveryBoyRepo.List(filter)
}
