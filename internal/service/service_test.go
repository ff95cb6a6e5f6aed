package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/queue"
)

// setupServiceDB opens a fresh in-memory database and points the shared
// handle at it. Each test gets its own schema.
func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.DeliveryBoy{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.CartItem{},
		&models.Payment{},
		&models.PaymentOrder{},
		&models.UserDeliveryAssignment{},
		&models.Subscription{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db
	return db
}

func disabledQueueClient(t *testing.T) *queue.Client {
	t.Helper()
	client, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("create queue client failed: %v", err)
	}
	return client
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:          "Asha Verma",
		Email:         email,
		Phone:         "9876543210",
		Status:        constants.UserStatusActive,
		EmailVerified: true,
		AddressLine:   "H-42, Milk Colony",
		Area:          "Sector 12",
		City:          "Jaipur",
		Pincode:       "302012",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func createTestCategory(t *testing.T, db *gorm.DB, slug string) *models.Category {
	t.Helper()
	cat := &models.Category{Name: "Milk", Slug: slug, IsActive: true}
	if err := db.Create(cat).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}
	return cat
}

func createTestProduct(t *testing.T, db *gorm.DB, categoryID uint, slug string, price int64, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID:    categoryID,
		Name:          "Full Cream Milk " + slug,
		Slug:          slug,
		Unit:          "1L",
		Price:         models.NewMoneyFromInt(price),
		StockQuantity: stock,
		Status:        models.DeriveStatus("", stock),
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func createTestBoy(t *testing.T, db *gorm.DB, phone string, active bool) *models.DeliveryBoy {
	t.Helper()
	boy := &models.DeliveryBoy{
		Name:     "Ravi " + phone,
		Phone:    phone,
		IsActive: active,
		Shifts:   models.StringArray{constants.ShiftMorning},
	}
	if err := db.Create(boy).Error; err != nil {
		t.Fatalf("create delivery boy failed: %v", err)
	}
	return boy
}
