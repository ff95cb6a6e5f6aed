package service

import (
	"time"

	"github.com/dairydrop/internal/repository"
)

// DashboardService assembles the back-office overview from the
// aggregate repository.
type DashboardService struct {
	dashboardRepo     repository.DashboardRepository
	lowStockThreshold int
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(dashboardRepo repository.DashboardRepository, lowStockThreshold int) *DashboardService {
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &DashboardService{
		dashboardRepo:     dashboardRepo,
		lowStockThreshold: lowStockThreshold,
	}
}

// Overview is the dashboard payload.
type Overview struct {
	Orders       repository.DashboardOverviewRow        `json:"orders"`
	Stock        repository.DashboardStockStatsRow      `json:"stock"`
	TopProducts  []repository.DashboardProductRankingRow `json:"top_products"`
	DeliveryLoad []repository.DashboardDeliveryBoyRow    `json:"delivery_load"`
}

// GetOverview builds the overview for a window. Zero times default to
// the trailing 30 days.
func (s *DashboardService) GetOverview(startAt, endAt time.Time) (*Overview, error) {
	if endAt.IsZero() {
		endAt = time.Now()
	}
	if startAt.IsZero() {
		startAt = endAt.AddDate(0, 0, -30)
	}

	orders, err := s.dashboardRepo.GetOverview(startAt, endAt)
	if err != nil {
		return nil, err
	}
	stock, err := s.dashboardRepo.GetStockStats(s.lowStockThreshold)
	if err != nil {
		return nil, err
	}
	top, err := s.dashboardRepo.GetTopProducts(startAt, endAt, 10)
	if err != nil {
		return nil, err
	}
	load, err := s.dashboardRepo.GetDeliveryBoyStats(startAt, endAt)
	if err != nil {
		return nil, err
	}
	return &Overview{
		Orders:       orders,
		Stock:        stock,
		TopProducts:  top,
		DeliveryLoad: load,
	}, nil
}

// GetOrderTrends returns per-day order counts.
func (s *DashboardService) GetOrderTrends(startAt, endAt time.Time) ([]repository.DashboardOrderTrendRow, error) {
	if endAt.IsZero() {
		endAt = time.Now()
	}
	if startAt.IsZero() {
		startAt = endAt.AddDate(0, 0, -30)
	}
	return s.dashboardRepo.GetOrderTrends(startAt, endAt)
}
