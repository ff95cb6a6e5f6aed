package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/models"
)

// DashboardRepository runs the back-office aggregate queries. It only
// aggregates; business rules live in the service layer.
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetOrderTrends(startAt, endAt time.Time) ([]DashboardOrderTrendRow, error)
	GetStockStats(lowStockThreshold int) (DashboardStockStatsRow, error)
	GetTopProducts(startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error)
	GetDeliveryBoyStats(startAt, endAt time.Time) ([]DashboardDeliveryBoyRow, error)
}

// DashboardOverviewRow is the raw overview aggregate.
type DashboardOverviewRow struct {
	OrdersTotal      int64
	PendingOrders    int64
	ConfirmedOrders  int64
	DeliveredOrders  int64
	CancelledOrders  int64
	RevenueDelivered float64
	PaymentsPending  int64
	PaymentsPaid     int64
	NewUsers         int64
	ActiveProducts   int64
}

// DashboardOrderTrendRow is one day of order counts.
type DashboardOrderTrendRow struct {
	Day             string
	OrdersTotal     int64
	OrdersDelivered int64
}

// DashboardStockStatsRow is the stock health aggregate.
type DashboardStockStatsRow struct {
	OutOfStockProducts int64
	LowStockProducts   int64
}

// DashboardProductRankingRow is one row of the best-seller ranking.
type DashboardProductRankingRow struct {
	ProductID  uint
	Name       string
	Orders     int64
	Quantity   int64
	PaidAmount float64
}

// DashboardDeliveryBoyRow is one row of per-boy delivery counts.
type DashboardDeliveryBoyRow struct {
	DeliveryBoyID uint
	Name          string
	Delivered     int64
}

// GormDashboardRepository is the GORM implementation.
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a dashboard repository.
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview returns the overview aggregate for a window.
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}

	if err := orderBase().Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusPending).Count(&result.PendingOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusConfirmed).Count(&result.ConfirmedOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusDelivered).Count(&result.DeliveredOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusCancelled).Count(&result.CancelledOrders).Error; err != nil {
		return result, err
	}

	var revenue struct{ Total float64 }
	if err := orderBase().
		Where("status = ?", constants.OrderStatusDelivered).
		Select("COALESCE(SUM(total_amount), 0) as total").
		Scan(&revenue).Error; err != nil {
		return result, err
	}
	result.RevenueDelivered = revenue.Total

	paymentBase := func() *gorm.DB {
		return r.db.Model(&models.Payment{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}
	if err := paymentBase().Where("status = ?", constants.PaymentSessionPending).Count(&result.PaymentsPending).Error; err != nil {
		return result, err
	}
	if err := paymentBase().Where("status = ?", constants.PaymentSessionCompleted).Count(&result.PaymentsPaid).Error; err != nil {
		return result, err
	}

	if err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewUsers).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Product{}).
		Where("status = ?", constants.ProductStatusActive).
		Count(&result.ActiveProducts).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetOrderTrends returns per-day order counts for a window.
func (r *GormDashboardRepository) GetOrderTrends(startAt, endAt time.Time) ([]DashboardOrderTrendRow, error) {
	var rows []DashboardOrderTrendRow
	if err := r.db.Model(&models.Order{}).
		Select("DATE(created_at) as day, COUNT(*) as orders_total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) as orders_delivered", constants.OrderStatusDelivered).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Group("DATE(created_at)").
		Order("day asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetStockStats returns the stock health aggregate.
func (r *GormDashboardRepository) GetStockStats(lowStockThreshold int) (DashboardStockStatsRow, error) {
	result := DashboardStockStatsRow{}
	if err := r.db.Model(&models.Product{}).
		Where("status = ?", constants.ProductStatusOutOfStock).
		Count(&result.OutOfStockProducts).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Product{}).
		Where("status = ? AND stock_quantity > 0 AND stock_quantity <= ?", constants.ProductStatusActive, lowStockThreshold).
		Count(&result.LowStockProducts).Error; err != nil {
		return result, err
	}
	return result, nil
}

// GetTopProducts ranks products by delivered quantity in a window.
func (r *GormDashboardRepository) GetTopProducts(startAt, endAt time.Time, limit int) ([]DashboardProductRankingRow, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []DashboardProductRankingRow
	if err := r.db.Model(&models.OrderItem{}).
		Select("order_items.product_id as product_id, order_items.name as name, COUNT(DISTINCT order_items.order_id) as orders, SUM(order_items.quantity) as quantity, SUM(order_items.total_price) as paid_amount").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ? AND orders.created_at >= ? AND orders.created_at < ?", constants.OrderStatusDelivered, startAt, endAt).
		Group("order_items.product_id, order_items.name").
		Order("quantity desc").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetDeliveryBoyStats returns per-boy delivered order counts in a window.
func (r *GormDashboardRepository) GetDeliveryBoyStats(startAt, endAt time.Time) ([]DashboardDeliveryBoyRow, error) {
	var rows []DashboardDeliveryBoyRow
	if err := r.db.Model(&models.Order{}).
		Select("orders.delivery_boy_id as delivery_boy_id, delivery_boys.name as name, COUNT(*) as delivered").
		Joins("JOIN delivery_boys ON delivery_boys.id = orders.delivery_boy_id").
		Where("orders.status = ? AND orders.delivered_at >= ? AND orders.delivered_at < ?", constants.OrderStatusDelivered, startAt, endAt).
		Group("orders.delivery_boy_id, delivery_boys.name").
		Order("delivered desc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
