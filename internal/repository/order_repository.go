package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/models"
)

// OrderRepository is the order data access interface.
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	GetByOrderNo(orderNo string) (*models.Order, error)
	GetByIDs(ids []uint) ([]models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	ListOpenByUser(userID uint) ([]models.Order, error)
	ListWorkQueue(deliveryBoyID uint, date time.Time, shift string) ([]models.Order, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	UpdateFields(id uint, updates map[string]interface{}) error
	ReassignOpenOrders(fromBoyID, toBoyID uint, dateFrom, dateTo *time.Time) (int64, error)
	CountByStatus() (map[string]int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository is the GORM implementation.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates an order repository.
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create inserts an order with its line items.
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches an order with items by ID.
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Preload("DeliveryBoy").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndUser fetches an order owned by the given user.
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Preload("DeliveryBoy").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNo fetches an order by its order number.
func (r *GormOrderRepository) GetByOrderNo(orderNo string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("order_no = ?", orderNo).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDs fetches orders by ID set.
func (r *GormOrderRepository) GetByIDs(ids []uint) ([]models.Order, error) {
	var orders []models.Order
	if len(ids) == 0 {
		return orders, nil
	}
	if err := r.db.Preload("Items").Where("id IN ?", ids).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListByUser returns a user's orders.
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no LIKE ?", "%"+filter.OrderNo+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListAdmin returns orders for the back-office list.
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := r.db.Model(&models.Order{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.DeliveryBoyID != 0 {
		query = query.Where("delivery_boy_id = ?", filter.DeliveryBoyID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.Shift != "" {
		query = query.Where("delivery_shift = ?", filter.Shift)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.DeliveryDate != nil {
		query = query.Where("delivery_date = ?", *filter.DeliveryDate)
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

	var orders []models.Order
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Items").Preload("DeliveryBoy").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListOpenByUser returns the user's pending and confirmed orders, the
// set assignment changes cascade into.
func (r *GormOrderRepository) ListOpenByUser(userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.
		Where("user_id = ? AND status IN ?", userID,
			[]string{constants.OrderStatusPending, constants.OrderStatusConfirmed}).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListWorkQueue returns a delivery boy's confirmed orders for one date
// and shift. Orders come out grouped per household: users sort by their
// admin-assigned route sequence (assignment time when unset, a sequence
// of 0 counts as unset), and within one household by the per-order
// sequence (creation time when unset).
func (r *GormOrderRepository) ListWorkQueue(deliveryBoyID uint, date time.Time, shift string) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.Preload("Items").
		Joins("LEFT JOIN user_delivery_assignments a ON a.user_id = orders.user_id AND a.is_active = ? AND a.deleted_at IS NULL", true).
		Where("orders.delivery_boy_id = ? AND orders.status = ? AND orders.delivery_date = ?",
			deliveryBoyID, constants.OrderStatusConfirmed, date)
	if shift != "" {
		query = query.Where("orders.delivery_shift = ?", shift)
	}
	if err := query.
		Order("CASE WHEN orders.priority = 'urgent' THEN 0 ELSE 1 END asc").
		Order("COALESCE(NULLIF(a.sequence, 0), 999999) asc").
		Order("a.assigned_at asc").
		Order("orders.user_id asc").
		Order("COALESCE(orders.sequence_no, 999999) asc").
		Order("orders.created_at asc").
		Order("orders.id asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus updates the order status with extra fields.
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateFields applies a partial update.
func (r *GormOrderRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// ReassignOpenOrders moves open orders from one delivery boy to another,
// optionally restricted to a creation-date window. Terminal orders are
// never touched.
func (r *GormOrderRepository) ReassignOpenOrders(fromBoyID, toBoyID uint, dateFrom, dateTo *time.Time) (int64, error) {
	query := r.db.Model(&models.Order{}).
		Where("delivery_boy_id = ? AND status IN ?", fromBoyID,
			[]string{constants.OrderStatusPending, constants.OrderStatusConfirmed})
	if dateFrom != nil {
		query = query.Where("created_at >= ?", *dateFrom)
	}
	if dateTo != nil {
		query = query.Where("created_at <= ?", *dateTo)
	}
	result := query.Update("delivery_boy_id", toBoyID)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountByStatus returns order counts grouped by status.
func (r *GormOrderRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
