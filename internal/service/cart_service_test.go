package service

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
)

func newCartFixture(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	db := setupServiceDB(t)
	svc := NewCartService(repository.NewCartRepository(db), repository.NewProductRepository(db))
	return svc, db
}

func TestCartAddBumpsQuantity(t *testing.T) {
	svc, db := newCartFixture(t)
	user := createTestUser(t, db, "asha@example.com")
	cat := createTestCategory(t, db, "milk")
	product := createTestProduct(t, db, cat.ID, "cow-milk-1l", 60, 10)

	if err := svc.Add(user.ID, product.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.Add(user.ID, product.ID, 2); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	cart, err := svc.Get(user.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("adds should accumulate to one line of 3, got %+v", cart.Items)
	}
	if got := cart.Subtotal.String(); got != "180.00" {
		t.Fatalf("subtotal want 180.00, got %s", got)
	}
}

func TestCartAddValidation(t *testing.T) {
	svc, db := newCartFixture(t)
	user := createTestUser(t, db, "asha@example.com")
	cat := createTestCategory(t, db, "milk")
	inactive := createTestProduct(t, db, cat.ID, "discontinued", 60, 10)
	if err := db.Model(&models.Product{}).Where("id = ?", inactive.ID).
		Update("status", constants.ProductStatusInactive).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	if err := svc.Add(user.ID, inactive.ID, 1); !errors.Is(err, ErrProductInactive) {
		t.Fatalf("want ErrProductInactive, got %v", err)
	}
	if err := svc.Add(user.ID, 99999, 1); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("want ErrProductNotFound, got %v", err)
	}
	if err := svc.Add(user.ID, inactive.ID, 0); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("want ErrInvalidQuantity, got %v", err)
	}
}

func TestCartSetQuantity(t *testing.T) {
	svc, db := newCartFixture(t)
	user := createTestUser(t, db, "asha@example.com")
	cat := createTestCategory(t, db, "milk")
	product := createTestProduct(t, db, cat.ID, "cow-milk-1l", 60, 10)

	if err := svc.SetQuantity(user.ID, product.ID, 2); !errors.Is(err, ErrCartItemNotFound) {
		t.Fatalf("set on missing line want ErrCartItemNotFound, got %v", err)
	}
	if err := svc.Add(user.ID, product.ID, 5); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.SetQuantity(user.ID, product.ID, 2); err != nil {
		t.Fatalf("set quantity failed: %v", err)
	}
	cart, err := svc.Get(user.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("quantity want absolute 2, got %d", cart.Items[0].Quantity)
	}

	// Zero removes the line.
	if err := svc.SetQuantity(user.ID, product.ID, 0); err != nil {
		t.Fatalf("set zero failed: %v", err)
	}
	cart, err = svc.Get(user.ID)
	if err != nil {
		t.Fatalf("get cart failed: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("cart should be empty, got %+v", cart.Items)
	}
}

func TestCheckoutItems(t *testing.T) {
	svc, db := newCartFixture(t)
	user := createTestUser(t, db, "asha@example.com")
	cat := createTestCategory(t, db, "milk")
	milk := createTestProduct(t, db, cat.ID, "cow-milk-1l", 60, 10)
	curd := createTestProduct(t, db, cat.ID, "set-curd", 45, 10)

	if _, err := svc.CheckoutItems(user.ID); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("empty cart want ErrCartEmpty, got %v", err)
	}

	if err := svc.Add(user.ID, milk.ID, 2); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.Add(user.ID, curd.ID, 1); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	lines, err := svc.CheckoutItems(user.ID)
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
}
