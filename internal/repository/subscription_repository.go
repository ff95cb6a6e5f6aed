package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dairydrop/internal/models"
)

// SubscriptionRepository is the subscription data access interface.
type SubscriptionRepository interface {
	Create(sub *models.Subscription) error
	GetByID(id uint) (*models.Subscription, error)
	GetByIDAndUser(id, userID uint) (*models.Subscription, error)
	List(filter SubscriptionListFilter) ([]models.Subscription, int64, error)
	UpdateFields(id uint, updates map[string]interface{}) error
}

// GormSubscriptionRepository is the GORM implementation.
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a subscription repository.
func NewSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// Create inserts a subscription.
func (r *GormSubscriptionRepository) Create(sub *models.Subscription) error {
	return r.db.Create(sub).Error
}

// GetByID fetches a subscription by ID.
func (r *GormSubscriptionRepository) GetByID(id uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Preload("Product").First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// GetByIDAndUser fetches a subscription owned by the given user.
func (r *GormSubscriptionRepository) GetByIDAndUser(id, userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Preload("Product").
		Where("id = ? AND user_id = ?", id, userID).
		First(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// List returns subscriptions matching the filter with a total count.
func (r *GormSubscriptionRepository) List(filter SubscriptionListFilter) ([]models.Subscription, int64, error) {
	query := r.db.Model(&models.Subscription{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var subs []models.Subscription
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Product").Order("id desc").Find(&subs).Error; err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

// UpdateFields applies a partial update.
func (r *GormSubscriptionRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Subscription{}).Where("id = ?", id).Updates(updates).Error
}
