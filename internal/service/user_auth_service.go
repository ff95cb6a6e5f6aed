package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dairydrop/internal/cache"
	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/logger"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
)

const verifyCodeTTL = 10 * time.Minute

// UserAuthService handles customer registration, email verification and
// login.
type UserAuthService struct {
	userRepo repository.UserRepository
	authSvc  *AuthService
	emailSvc *EmailService
}

// NewUserAuthService creates a user auth service.
func NewUserAuthService(userRepo repository.UserRepository, authSvc *AuthService, emailSvc *EmailService) *UserAuthService {
	return &UserAuthService{
		userRepo: userRepo,
		authSvc:  authSvc,
		emailSvc: emailSvc,
	}
}

// RegisterInput is the registration request.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Register creates an unverified account and mails a verification code.
// Mail failures are logged but do not fail registration.
func (s *UserAuthService) Register(input RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, ErrInvalidEmail
	}
	existing, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}
	if err := s.authSvc.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	hash, err := s.authSvc.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(input.Phone),
		Status:       constants.UserStatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	if err := s.SendVerifyCode(email); err != nil && err != ErrEmailDisabled {
		logger.Warnw("register_verify_code_send_failed", "email", email, "error", err)
	}
	logger.Infow("user_registered", "user_id", user.ID, "email", email)
	return user, nil
}

// SendVerifyCode generates and mails a fresh verification code.
func (s *UserAuthService) SendVerifyCode(email string) error {
	code := randNumeric(6)
	if err := cache.SetJSON(context.Background(), verifyCodeKey(email), code, verifyCodeTTL); err != nil {
		return err
	}
	return s.emailSvc.SendVerifyCode(email, code)
}

// VerifyEmail checks a code and marks the account verified.
func (s *UserAuthService) VerifyEmail(email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	var stored string
	found, err := cache.GetJSON(context.Background(), verifyCodeKey(email), &stored)
	if err != nil {
		return err
	}
	if !found || stored != strings.TrimSpace(code) {
		return ErrCaptchaInvalid
	}
	if err := cache.Del(context.Background(), verifyCodeKey(email)); err != nil {
		logger.Warnw("verify_code_delete_failed", "email", email, "error", err)
	}
	return s.userRepo.UpdateFields(user.ID, map[string]interface{}{
		"email_verified": true,
		"updated_at":     time.Now(),
	})
}

// Login authenticates a customer and issues a token.
func (s *UserAuthService) Login(email, password string) (*models.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if user == nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	if user.Status != constants.UserStatusActive {
		return nil, "", time.Time{}, ErrAccountDisabled
	}
	if err := s.authSvc.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, ErrInvalidCredentials
	}
	token, expiresAt, err := s.authSvc.GenerateJWT(user.ID, user.Name, constants.RoleUser)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	logger.Infow("user_login", "user_id", user.ID)
	return user, token, expiresAt, nil
}

// UpdateProfileInput is the profile edit request.
type UpdateProfileInput struct {
	Name        string
	Phone       string
	AddressLine string
	Area        string
	City        string
	Pincode     string
	Landmark    string
}

// UpdateProfile edits the customer's contact and shipping details.
func (s *UserAuthService) UpdateProfile(userID uint, input UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	updates := map[string]interface{}{
		"name":         strings.TrimSpace(input.Name),
		"phone":        strings.TrimSpace(input.Phone),
		"address_line": strings.TrimSpace(input.AddressLine),
		"area":         strings.TrimSpace(input.Area),
		"city":         strings.TrimSpace(input.City),
		"pincode":      strings.TrimSpace(input.Pincode),
		"landmark":     strings.TrimSpace(input.Landmark),
		"updated_at":   time.Now(),
	}
	if err := s.userRepo.UpdateFields(userID, updates); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(userID)
}

// GetProfile returns the customer's account.
func (s *UserAuthService) GetProfile(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ListUsers returns customers for the back office.
func (s *UserAuthService) ListUsers(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// SetUserStatus enables or disables a customer account.
func (s *UserAuthService) SetUserStatus(userID uint, status string) error {
	if status != constants.UserStatusActive && status != constants.UserStatusDisabled {
		return ErrInvalidTransition
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return s.userRepo.UpdateFields(userID, map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	})
}

func verifyCodeKey(email string) string {
	return fmt.Sprintf("verify_code:%s", strings.ToLower(strings.TrimSpace(email)))
}
