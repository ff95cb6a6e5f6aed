package service

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
)

func newSubscriptionFixture(t *testing.T) (*SubscriptionService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	svc := NewSubscriptionService(repository.NewSubscriptionRepository(db), repository.NewProductRepository(db))
	return svc, db
}

func TestSubscribeValidation(t *testing.T) {
	svc, db := newSubscriptionFixture(t)
	user := createTestUser(t, db, "asha@example.com")
	cat := createTestCategory(t, db, "milk")
	product := createTestProduct(t, db, cat.ID, "cow-milk-1l", 60, 10)

	base := SubscribeInput{
		UserID:        user.ID,
		ProductID:     product.ID,
		Quantity:      1,
		Frequency:     constants.SubscriptionDaily,
		DeliveryShift: constants.ShiftMorning,
		StartDate:     istDate(2026, 3, 11, 0, 0),
	}

	bad := base
	bad.Quantity = 0
	if _, err := svc.Subscribe(bad); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("want ErrInvalidQuantity, got %v", err)
	}
	bad = base
	bad.Frequency = "monthly"
	if _, err := svc.Subscribe(bad); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("want ErrInvalidFrequency, got %v", err)
	}
	bad = base
	bad.DeliveryShift = "noon"
	if _, err := svc.Subscribe(bad); !errors.Is(err, ErrInvalidShift) {
		t.Fatalf("want ErrInvalidShift, got %v", err)
	}
	bad = base
	bad.ProductID = 99999
	if _, err := svc.Subscribe(bad); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}

	sub, err := svc.Subscribe(base)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if sub.Status != constants.SubscriptionStatusActive {
		t.Fatalf("new plan should be active, got %s", sub.Status)
	}
}

func TestSubscriptionPauseResumeCancel(t *testing.T) {
	svc, db := newSubscriptionFixture(t)
	user := createTestUser(t, db, "asha@example.com")
	cat := createTestCategory(t, db, "milk")
	product := createTestProduct(t, db, cat.ID, "cow-milk-1l", 60, 10)

	sub, err := svc.Subscribe(SubscribeInput{
		UserID:        user.ID,
		ProductID:     product.ID,
		Quantity:      2,
		Frequency:     constants.SubscriptionAlternate,
		DeliveryShift: constants.ShiftMorning,
		StartDate:     istDate(2026, 3, 11, 0, 0),
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	reload := func() models.Subscription {
		var got models.Subscription
		if err := db.First(&got, sub.ID).Error; err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		return got
	}

	if err := svc.Pause(sub.ID, user.ID); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	got := reload()
	if got.Status != constants.SubscriptionStatusPaused || got.PausedAt == nil {
		t.Fatalf("plan should be paused with timestamp, got %+v", got)
	}

	if err := svc.Resume(sub.ID, user.ID); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	got = reload()
	if got.Status != constants.SubscriptionStatusActive || got.PausedAt != nil {
		t.Fatalf("resumed plan should be active with paused_at cleared, got %+v", got)
	}

	if err := svc.Cancel(sub.ID, user.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got = reload(); got.Status != constants.SubscriptionStatusCancelled {
		t.Fatalf("plan should be cancelled, got %s", got.Status)
	}

	// Cancelled plans are gone as far as mutation goes.
	if err := svc.Pause(sub.ID, user.ID); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("pause after cancel want ErrSubscriptionNotFound, got %v", err)
	}

	// Other users cannot touch the plan.
	if err := svc.Cancel(sub.ID, user.ID+1); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("foreign user want ErrSubscriptionNotFound, got %v", err)
	}
}
