package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"github.com/dairydrop/internal/config"
	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/provider"
	"github.com/dairydrop/internal/queue"
	"github.com/dairydrop/internal/repository"
	"github.com/dairydrop/internal/service"
)

func newConsumerFixture(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.PaymentOrder{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	models.DB = db

	cfg := &config.Config{}
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("create queue client failed: %v", err)
	}
	paymentRepo := repository.NewPaymentRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	container := &provider.Container{
		Config:       cfg,
		OrderRepo:    orderRepo,
		UserRepo:     repository.NewUserRepository(db),
		PaymentRepo:  paymentRepo,
		EmailService: service.NewEmailService(&cfg.Email), // disabled
		PaymentService: service.NewPaymentService(
			paymentRepo, orderRepo, queueClient, "dairydrop@upi", "DairyDrop", 30,
		),
	}
	return NewConsumer(container), db
}

func TestHandlePaymentSessionExpire(t *testing.T) {
	consumer, db := newConsumerFixture(t)

	payment := &models.Payment{
		PaymentID:          "PAY-TEST-000001",
		ReferenceNo:        "REF-TEST-000001",
		UserID:             1,
		TotalAmount:        models.NewMoneyFromInt(170),
		Status:             constants.PaymentSessionPending,
		VerificationStatus: constants.VerificationPending,
		ExpiresAt:          time.Now().Add(-time.Minute),
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("create payment failed: %v", err)
	}

	task, err := queue.NewPaymentSessionExpireTask(queue.PaymentSessionExpirePayload{PaymentID: payment.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handlePaymentSessionExpire(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	var got models.Payment
	if err := db.First(&got, payment.ID).Error; err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if got.Status != constants.PaymentSessionCancelled {
		t.Fatalf("session status want cancelled got %s", got.Status)
	}

	// Replays are harmless.
	if err := consumer.handlePaymentSessionExpire(context.Background(), task); err != nil {
		t.Fatalf("replay should be a no-op, got %v", err)
	}
}

func TestHandlePaymentSessionExpireBadPayload(t *testing.T) {
	consumer, _ := newConsumerFixture(t)
	task := asynq.NewTask(queue.TaskPaymentSessionExpire, []byte("not-json"))
	if err := consumer.handlePaymentSessionExpire(context.Background(), task); err == nil {
		t.Fatal("malformed payload should fail the task")
	}
}

func TestHandleOrderStatusEmailDisabledMailer(t *testing.T) {
	consumer, db := newConsumerFixture(t)

	user := &models.User{Name: "Asha", Email: "asha@example.com", Status: constants.UserStatusActive}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	order := &models.Order{
		OrderNo:       "ORD-1767000000000-0001",
		UserID:        user.ID,
		Status:        constants.OrderStatusConfirmed,
		PaymentStatus: constants.PaymentStatusPending,
		PaymentMethod: constants.PaymentMethodCOD,
		TotalAmount:   models.NewMoneyFromInt(170),
		ShippingAddr:  models.JSON{"city": "Jaipur", "pincode": "302012"},
		DeliveryDate:  time.Now().AddDate(0, 0, 1),
		DeliveryShift: constants.ShiftMorning,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	task, err := queue.NewOrderStatusEmailTask(queue.OrderStatusEmailPayload{
		OrderID:   order.ID,
		NewStatus: constants.OrderStatusConfirmed,
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	// With mail disabled the task completes without retrying.
	if err := consumer.handleOrderStatusEmail(context.Background(), task); err != nil {
		t.Fatalf("disabled mailer should not fail the task, got %v", err)
	}

	// A vanished order is dropped, not retried forever.
	gone, err := queue.NewOrderStatusEmailTask(queue.OrderStatusEmailPayload{OrderID: 99999})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderStatusEmail(context.Background(), gone); err != nil {
		t.Fatalf("missing order should be skipped, got %v", err)
	}
}
