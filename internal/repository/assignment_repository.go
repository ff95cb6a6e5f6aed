package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dairydrop/internal/models"
)

// AssignmentRepository is the user-to-delivery-boy assignment data
// access interface.
type AssignmentRepository interface {
	Create(assignment *models.UserDeliveryAssignment) error
	GetByID(id uint) (*models.UserDeliveryAssignment, error)
	GetActiveByUser(userID uint) (*models.UserDeliveryAssignment, error)
	List(filter AssignmentListFilter) ([]models.UserDeliveryAssignment, int64, error)
	ListActiveByDeliveryBoy(deliveryBoyID uint) ([]models.UserDeliveryAssignment, error)
	Update(assignment *models.UserDeliveryAssignment) error
	UpdateFields(id uint, updates map[string]interface{}) error
	Deactivate(id uint, at time.Time) error
	WithTx(tx *gorm.DB) *GormAssignmentRepository
}

// GormAssignmentRepository is the GORM implementation.
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates an assignment repository.
func NewAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormAssignmentRepository) WithTx(tx *gorm.DB) *GormAssignmentRepository {
	if tx == nil {
		return r
	}
	return &GormAssignmentRepository{db: tx}
}

// Create inserts an assignment. The (user_id, active_key) unique index
// rejects a second active row for the same user.
func (r *GormAssignmentRepository) Create(assignment *models.UserDeliveryAssignment) error {
	return r.db.Create(assignment).Error
}

// GetByID fetches an assignment by ID.
func (r *GormAssignmentRepository) GetByID(id uint) (*models.UserDeliveryAssignment, error) {
	var assignment models.UserDeliveryAssignment
	if err := r.db.Preload("User").Preload("DeliveryBoy").First(&assignment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// GetActiveByUser fetches the user's active assignment, if any.
func (r *GormAssignmentRepository) GetActiveByUser(userID uint) (*models.UserDeliveryAssignment, error) {
	var assignment models.UserDeliveryAssignment
	if err := r.db.Preload("DeliveryBoy").
		Where("user_id = ? AND is_active = ?", userID, true).
		First(&assignment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// List returns assignments matching the filter with a total count.
func (r *GormAssignmentRepository) List(filter AssignmentListFilter) ([]models.UserDeliveryAssignment, int64, error) {
	query := r.db.Model(&models.UserDeliveryAssignment{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.DeliveryBoyID != 0 {
		query = query.Where("delivery_boy_id = ?", filter.DeliveryBoyID)
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var assignments []models.UserDeliveryAssignment
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("User").Preload("DeliveryBoy").
		Order("sequence asc, id desc").
		Find(&assignments).Error; err != nil {
		return nil, 0, err
	}
	return assignments, total, nil
}

// ListActiveByDeliveryBoy returns a boy's active roster ordered by route
// sequence.
func (r *GormAssignmentRepository) ListActiveByDeliveryBoy(deliveryBoyID uint) ([]models.UserDeliveryAssignment, error) {
	var assignments []models.UserDeliveryAssignment
	if err := r.db.Preload("User").
		Where("delivery_boy_id = ? AND is_active = ?", deliveryBoyID, true).
		Order("sequence asc, id asc").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// Update saves all fields.
func (r *GormAssignmentRepository) Update(assignment *models.UserDeliveryAssignment) error {
	return r.db.Save(assignment).Error
}

// UpdateFields applies a partial update.
func (r *GormAssignmentRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.UserDeliveryAssignment{}).Where("id = ?", id).Updates(updates).Error
}

// Deactivate retires an assignment, clearing active_key so the unique
// index frees the slot for a new active row.
func (r *GormAssignmentRepository) Deactivate(id uint, at time.Time) error {
	return r.db.Model(&models.UserDeliveryAssignment{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_active":      false,
		"active_key":     nil,
		"deactivated_at": at,
	}).Error
}
