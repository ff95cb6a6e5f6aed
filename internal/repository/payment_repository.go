package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/models"
)

// PaymentRepository is the payment session data access interface.
type PaymentRepository interface {
	Create(payment *models.Payment, links []models.PaymentOrder) error
	GetByID(id uint) (*models.Payment, error)
	GetByPaymentID(paymentID string) (*models.Payment, error)
	GetByPaymentIDAndUser(paymentID string, userID uint) (*models.Payment, error)
	List(filter PaymentListFilter) ([]models.Payment, int64, error)
	ListOrderIDs(paymentID uint) ([]uint, error)
	ListExpired(now time.Time, limit int) ([]models.Payment, error)
	UpdateFields(id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormPaymentRepository
}

// GormPaymentRepository is the GORM implementation.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a payment repository.
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) *GormPaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// Create inserts a payment session with its order links.
func (r *GormPaymentRepository) Create(payment *models.Payment, links []models.PaymentOrder) error {
	if err := r.db.Create(payment).Error; err != nil {
		return err
	}
	for i := range links {
		links[i].PaymentID = payment.ID
	}
	if len(links) > 0 {
		if err := r.db.Create(&links).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a payment session by ID.
func (r *GormPaymentRepository) GetByID(id uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.First(&payment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetByPaymentID fetches a payment session by its public identifier.
func (r *GormPaymentRepository) GetByPaymentID(paymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.Where("payment_id = ?", paymentID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// GetByPaymentIDAndUser fetches a session owned by the given user.
func (r *GormPaymentRepository) GetByPaymentIDAndUser(paymentID string, userID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.Where("payment_id = ? AND user_id = ?", paymentID, userID).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// List returns payment sessions matching the filter with a total count.
func (r *GormPaymentRepository) List(filter PaymentListFilter) ([]models.Payment, int64, error) {
	query := r.db.Model(&models.Payment{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.VerificationStatus != "" {
		query = query.Where("verification_status = ?", filter.VerificationStatus)
	}
	if filter.ReferenceNo != "" {
		query = query.Where("reference_no = ?", filter.ReferenceNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var payments []models.Payment
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("id desc").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// ListOrderIDs returns the IDs of the orders a session covers.
func (r *GormPaymentRepository) ListOrderIDs(paymentID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.Model(&models.PaymentOrder{}).
		Where("payment_id = ?", paymentID).
		Order("order_id asc").
		Pluck("order_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListExpired returns pending sessions past their deadline, for the
// background expiry sweep.
func (r *GormPaymentRepository) ListExpired(now time.Time, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	query := r.db.Where("status = ? AND expires_at < ?", constants.PaymentSessionPending, now)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Order("id asc").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// UpdateFields applies a partial update.
func (r *GormPaymentRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Payment{}).Where("id = ?", id).Updates(updates).Error
}
