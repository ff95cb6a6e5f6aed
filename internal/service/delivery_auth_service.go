package service

import (
	"strings"
	"time"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/logger"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
)

// DeliveryAuthService authenticates delivery staff by phone number.
type DeliveryAuthService struct {
	deliveryBoyRepo repository.DeliveryBoyRepository
	authSvc         *AuthService
}

// NewDeliveryAuthService creates a delivery auth service.
func NewDeliveryAuthService(deliveryBoyRepo repository.DeliveryBoyRepository, authSvc *AuthService) *DeliveryAuthService {
	return &DeliveryAuthService{
		deliveryBoyRepo: deliveryBoyRepo,
		authSvc:         authSvc,
	}
}

// Login authenticates a delivery boy and issues a token.
func (s *DeliveryAuthService) Login(phone, password string) (*models.DeliveryBoy, string, time.Time, error) {
	phone = strings.TrimSpace(phone)
	boy, err := s.deliveryBoyRepo.GetByPhone(phone)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if boy == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if !boy.IsActive {
		return nil, "", time.Time{}, ErrAccountDisabled
	}
	if err := s.authSvc.VerifyPassword(boy.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, expiresAt, err := s.authSvc.GenerateJWT(boy.ID, boy.Name, constants.RoleDelivery)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	logger.Infow("delivery_boy_login", "delivery_boy_id", boy.ID)
	return boy, token, expiresAt, nil
}
