package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/dairydrop/internal/models"
)

// DeliveryBoyRepository is the delivery staff data access interface.
type DeliveryBoyRepository interface {
	Create(boy *models.DeliveryBoy) error
	GetByID(id uint) (*models.DeliveryBoy, error)
	GetByPhone(phone string) (*models.DeliveryBoy, error)
	List(filter DeliveryBoyListFilter) ([]models.DeliveryBoy, int64, error)
	Update(boy *models.DeliveryBoy) error
	UpdateFields(id uint, updates map[string]interface{}) error
	IncrementDeliveries(id uint) error
	WithTx(tx *gorm.DB) *GormDeliveryBoyRepository
}

// GormDeliveryBoyRepository is the GORM implementation.
type GormDeliveryBoyRepository struct {
	db *gorm.DB
}

// NewDeliveryBoyRepository creates a delivery boy repository.
func NewDeliveryBoyRepository(db *gorm.DB) *GormDeliveryBoyRepository {
	return &GormDeliveryBoyRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormDeliveryBoyRepository) WithTx(tx *gorm.DB) *GormDeliveryBoyRepository {
	if tx == nil {
		return r
	}
	return &GormDeliveryBoyRepository{db: tx}
}

// Create inserts a delivery boy.
func (r *GormDeliveryBoyRepository) Create(boy *models.DeliveryBoy) error {
	return r.db.Create(boy).Error
}

// GetByID fetches a delivery boy by ID.
func (r *GormDeliveryBoyRepository) GetByID(id uint) (*models.DeliveryBoy, error) {
	var boy models.DeliveryBoy
	if err := r.db.First(&boy, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &boy, nil
}

// GetByPhone fetches a delivery boy by phone number.
func (r *GormDeliveryBoyRepository) GetByPhone(phone string) (*models.DeliveryBoy, error) {
	var boy models.DeliveryBoy
	if err := r.db.Where("phone = ?", phone).First(&boy).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &boy, nil
}

// List returns delivery staff matching the filter with a total count.
// Area and shift filters match against the JSON array columns, so they
// use a LIKE over the serialized value.
func (r *GormDeliveryBoyRepository) List(filter DeliveryBoyListFilter) ([]models.DeliveryBoy, int64, error) {
	query := r.db.Model(&models.DeliveryBoy{})

	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	if filter.Area != "" {
		query = query.Where("areas LIKE ?", "%\""+filter.Area+"\"%")
	}
	if filter.Shift != "" {
		query = query.Where("shifts LIKE ?", "%\""+filter.Shift+"\"%")
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var boys []models.DeliveryBoy
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id asc").Find(&boys).Error; err != nil {
		return nil, 0, err
	}
	return boys, total, nil
}

// Update saves all fields.
func (r *GormDeliveryBoyRepository) Update(boy *models.DeliveryBoy) error {
	return r.db.Save(boy).Error
}

// UpdateFields applies a partial update.
func (r *GormDeliveryBoyRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.DeliveryBoy{}).Where("id = ?", id).Updates(updates).Error
}

// IncrementDeliveries bumps the lifetime delivery counter.
func (r *GormDeliveryBoyRepository) IncrementDeliveries(id uint) error {
	return r.db.Model(&models.DeliveryBoy{}).
		Where("id = ?", id).
		Update("total_deliveries", gorm.Expr("total_deliveries + 1")).Error
}
