package service

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
)

type orderServiceFixture struct {
	db      *gorm.DB
	svc     *OrderService
	now     *time.Time
	orders  *repository.GormOrderRepository
	boys    *repository.GormDeliveryBoyRepository
	assigns *repository.GormAssignmentRepository
}

// newOrderServiceFixture wires an order service over a fresh database
// with a mutable clock pinned to 2026-03-10 09:00 IST.
func newOrderServiceFixture(t *testing.T, shippingFee, freeAbove string) *orderServiceFixture {
	t.Helper()
	db := setupServiceDB(t)
	now := istDate(2026, 3, 10, 9, 0)
	clock := &now
	slotSvc := NewSlotServiceWithClock(func() time.Time { return *clock })

	orders := repository.NewOrderRepository(db)
	products := repository.NewProductRepository(db)
	users := repository.NewUserRepository(db)
	boys := repository.NewDeliveryBoyRepository(db)
	assigns := repository.NewAssignmentRepository(db)
	carts := repository.NewCartRepository(db)

	svc := NewOrderService(orders, products, users, boys, assigns, carts, slotSvc, disabledQueueClient(t), shippingFee, freeAbove)
	return &orderServiceFixture{db: db, svc: svc, now: clock, orders: orders, boys: boys, assigns: assigns}
}

func (f *orderServiceFixture) placeOrder(t *testing.T, userID uint, items []CreateOrderItem) *models.Order {
	t.Helper()
	order, err := f.svc.Create(CreateOrderInput{
		UserID:        userID,
		Items:         items,
		PaymentMethod: constants.PaymentMethodCOD,
		DeliveryDate:  istDate(2026, 3, 11, 0, 0),
		DeliveryShift: constants.ShiftMorning,
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func (f *orderServiceFixture) productStock(t *testing.T, id uint) (int, string) {
	t.Helper()
	var product models.Product
	if err := f.db.First(&product, id).Error; err != nil {
		t.Fatalf("load product failed: %v", err)
	}
	return product.StockQuantity, product.Status
}

func TestCreateOrderComputesTotals(t *testing.T) {
	f := newOrderServiceFixture(t, "50", "")
	user := createTestUser(t, f.db, "asha@example.com")
	cat := createTestCategory(t, f.db, "milk")
	product := createTestProduct(t, f.db, cat.ID, "cow-milk-1l", 60, 5)

	order := f.placeOrder(t, user.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 2}})

	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending, got %s", order.Status)
	}
	if got := order.Subtotal.String(); got != "120.00" {
		t.Fatalf("subtotal want 120.00, got %s", got)
	}
	if got := order.ShippingFee.String(); got != "50.00" {
		t.Fatalf("shipping want 50.00, got %s", got)
	}
	if got := order.TotalAmount.String(); got != "170.00" {
		t.Fatalf("total want 170.00, got %s", got)
	}
	if stock, _ := f.productStock(t, product.ID); stock != 5 {
		t.Fatalf("pending order must not touch stock, got %d", stock)
	}
	if order.ShippingAddr["pincode"] != "302012" {
		t.Fatalf("shipping address not snapshotted: %v", order.ShippingAddr)
	}
}

func TestCreateOrderFreeShippingThreshold(t *testing.T) {
	f := newOrderServiceFixture(t, "50", "500")
	user := createTestUser(t, f.db, "asha@example.com")
	cat := createTestCategory(t, f.db, "milk")
	product := createTestProduct(t, f.db, cat.ID, "desi-ghee", 450, 10)

	order := f.placeOrder(t, user.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 2}})
	if got := order.ShippingFee.String(); got != "0.00" {
		t.Fatalf("shipping above threshold want 0.00, got %s", got)
	}
	if got := order.TotalAmount.String(); got != "900.00" {
		t.Fatalf("total want 900.00, got %s", got)
	}
}

func TestCreateOrderMergesDuplicateLines(t *testing.T) {
	f := newOrderServiceFixture(t, "0", "")
	user := createTestUser(t, f.db, "asha@example.com")
	cat := createTestCategory(t, f.db, "milk")
	product := createTestProduct(t, f.db, cat.ID, "toned-milk", 30, 10)

	order := f.placeOrder(t, user.ID, []CreateOrderItem{
		{ProductID: product.ID, Quantity: 1},
		{ProductID: product.ID, Quantity: 2},
	})
	if len(order.Items) != 1 {
		t.Fatalf("duplicate lines should merge, got %d items", len(order.Items))
	}
	if order.Items[0].Quantity != 3 {
		t.Fatalf("merged quantity want 3, got %d", order.Items[0].Quantity)
	}
}

func TestCreateOrderRejectsIncompleteAddress(t *testing.T) {
	f := newOrderServiceFixture(t, "50", "")
	cat := createTestCategory(t, f.db, "milk")
	product := createTestProduct(t, f.db, cat.ID, "cow-milk-1l", 60, 5)
	user := &models.User{Name: "No Address", Email: "bare@example.com", Status: constants.UserStatusActive}
	if err := f.db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	_, err := f.svc.Create(CreateOrderInput{
		UserID:        user.ID,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		PaymentMethod: constants.PaymentMethodCOD,
		DeliveryDate:  istDate(2026, 3, 11, 0, 0),
		DeliveryShift: constants.ShiftMorning,
	})
	if !errors.Is(err, ErrAddressIncomplete) {
		t.Fatalf("want ErrAddressIncomplete, got %v", err)
	}
}

func TestCreateOrderRejectsInsufficientStock(t *testing.T) {
	f := newOrderServiceFixture(t, "50", "")
	user := createTestUser(t, f.db, "asha@example.com")
	cat := createTestCategory(t, f.db, "milk")
	product := createTestProduct(t, f.db, cat.ID, "cow-milk-1l", 60, 2)

	_, err := f.svc.Create(CreateOrderInput{
		UserID:        user.ID,
		Items:         []CreateOrderItem{{ProductID: product.ID, Quantity: 3}},
		PaymentMethod: constants.PaymentMethodCOD,
		DeliveryDate:  istDate(2026, 3, 11, 0, 0),
		DeliveryShift: constants.ShiftMorning,
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}
}

func TestConfirmDecrementsStock(t *testing.T) {
	f := newOrderServiceFixture(t, "50", "")
	user := createTestUser(t, f.db, "asha@example.com")
	cat := createTestCategory(t, f.db, "milk")
	product := createTestProduct(t, f.db, cat.ID, "cow-milk-1l", 60, 5)

	order := f.placeOrder(t, user.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 2}})

	confirmed, err := f.svc.Confirm(order.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.Status != constants.OrderStatusConfirmed {
		t.Fatalf("status want confirmed, got %s", confirmed.Status)
	}
	if stock, _ := f.productStock(t, product.ID); stock != 3 {
		t.Fatalf("stock want 3 after confirm, got %d", stock)
	}

	// Re-confirming must be rejected before any decrement runs.
	if _, err := f.svc.Confirm(order.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("re-confirm want ErrInvalidTransition, got %v", err)
	}
	if stock, _ := f.productStock(t, product.ID); stock != 3 {
		t.Fatalf("stock must stay 3 after rejected re-confirm, got %d", stock)
	}
}

func TestConfirmDerivesOutOfStock(t *testing.T) {
	f := newOrderServiceFixture(t, "0", "")
	user := createTestUser(t, f.db, "asha@example.com")
	cat := createTestCategory(t, f.db, "milk")
	product := createTestProduct(t, f.db, cat.ID, "set-curd", 45, 2)

	order := f.placeOrder(t, user.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 2}})
	if _, err := f.svc.Confirm(order.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	stock, status := f.productStock(t, product.ID)
	if stock != 0 || status != constants.ProductStatusOutOfStock {
		t.Fatalf("want stock 0 / out_of_stock, got %d / %s", stock, status)
	}
}

func TestConfirmShortfallRollsBackAllDecrements(t *testing.T) {
	f := newOrderServiceFixture(t, "0", "")
	user := createTestUser(t, f.db, "asha@example.com")
	cat := createTestCategory(t, f.db, "milk")
	plenty := createTestProduct(t, f.db, cat.ID, "cow-milk-1l", 60, 10)
	scarce := createTestProduct(t, f.db, cat.ID, "malai-paneer", 95, 5)

	order := f.placeOrder(t, user.ID, []CreateOrderItem{
		{ProductID: plenty.ID, Quantity: 2},
		{ProductID: scarce.ID, Quantity: 2},
	})

	// Another order drains the scarce product before this one confirms.
	if err := f.db.Model(&models.Product{}).Where("id = ?", scarce.ID).Update("stock_quantity", 1).Error; err != nil {
		t.Fatalf("drain stock failed: %v", err)
	}

	_, err := f.svc.Confirm(order.ID)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock, got %v", err)
	}
	if stock, _ := f.productStock(t, plenty.ID); stock != 10 {
		t.Fatalf("shortfall must roll back every decrement, plenty stock got %d", stock)
	}
	reloaded, err := f.svc.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusPending {
		t.Fatalf("order must stay pending after failed confirm, got %s", reloaded.Status)
	}
}

func TestCancelConfirmedRestoresStockAndRefunds(t *testing.T) {
	f := newOrderServiceFixture(t, "50", "")
	user := createTestUser(t, f.db, "asha@example.com")
	cat := createTestCategory(t, f.db, "milk")
	product := createTestProduct(t, f.db, cat.ID, "cow-milk-1l", 60, 5)

	order := f.placeOrder(t, user.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 2}})
	if _, err := f.svc.Confirm(order.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := f.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("payment_status", constants.PaymentStatusPaid).Error; err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	cancelled, err := f.svc.Cancel(order.ID, 0, true)
	if err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled, got %s", cancelled.Status)
	}
	if stock, _ := f.productStock(t, product.ID); stock != 5 {
		t.Fatalf("stock want restored to 5, got %d", stock)
	}
	reloaded, err := f.svc.GetByID(order.ID)
	if err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.PaymentStatus != constants.PaymentStatusRefunded {
		t.Fatalf("paid order must flip to refunded, got %s", reloaded.PaymentStatus)
	}
}

func TestCancelPendingLeavesStockAlone(t *testing.T) {
	f := newOrderServiceFixture(t, "50", "")
	user := createTestUser(t, f.db, "asha@example.com")
	cat := createTestCategory(t, f.db, "milk")
	product := createTestProduct(t, f.db, cat.ID, "cow-milk-1l", 60, 5)

	order := f.placeOrder(t, user.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 2}})
	if _, err := f.svc.Cancel(order.ID, user.ID, false); err != nil {
		t.Fatalf("customer cancel failed: %v", err)
	}
	if stock, _ := f.productStock(t, product.ID); stock != 5 {
		t.Fatalf("pending cancel must not change stock, got %d", stock)
	}
}

func TestCustomerCancelWindowCloses(t *testing.T) {
	f := newOrderServiceFixture(t, "50", "")
	user := createTestUser(t, f.db, "asha@example.com")
	cat := createTestCategory(t, f.db, "milk")
	product := createTestProduct(t, f.db, cat.ID, "cow-milk-1l", 60, 5)

	order := f.placeOrder(t, user.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 1}})

	// Past 20:00 IST the evening before a morning delivery.
	*f.now = istDate(2026, 3, 10, 20, 30)
	if _, err := f.svc.Cancel(order.ID, user.ID, false); !errors.Is(err, ErrCancelWindowClosed) {
		t.Fatalf("want ErrCancelWindowClosed, got %v", err)
	}

	// The admin override ignores the cutoff.
	if _, err := f.svc.Cancel(order.ID, 0, true); err != nil {
		t.Fatalf("admin cancel past cutoff failed: %v", err)
	}
}

func TestMarkDelivered(t *testing.T) {
	f := newOrderServiceFixture(t, "50", "")
	user := createTestUser(t, f.db, "asha@example.com")
	cat := createTestCategory(t, f.db, "milk")
	product := createTestProduct(t, f.db, cat.ID, "cow-milk-1l", 60, 5)
	boy := createTestBoy(t, f.db, "9876500001", true)
	other := createTestBoy(t, f.db, "9876500002", true)

	order := f.placeOrder(t, user.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 1}})
	if _, err := f.svc.Confirm(order.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := f.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("delivery_boy_id", boy.ID).Error; err != nil {
		t.Fatalf("assign boy failed: %v", err)
	}

	// Outside the morning window.
	*f.now = istDate(2026, 3, 11, 12, 0)
	if _, err := f.svc.MarkDelivered(MarkDeliveredInput{OrderID: order.ID, DeliveryBoyID: boy.ID}); !errors.Is(err, ErrOutsideDeliveryWindow) {
		t.Fatalf("want ErrOutsideDeliveryWindow, got %v", err)
	}

	// Inside the window but wrong delivery boy.
	*f.now = istDate(2026, 3, 11, 7, 0)
	if _, err := f.svc.MarkDelivered(MarkDeliveredInput{OrderID: order.ID, DeliveryBoyID: other.ID}); !errors.Is(err, ErrOrderNotAssigned) {
		t.Fatalf("want ErrOrderNotAssigned, got %v", err)
	}

	lat, lng := 26.9124, 75.7873
	delivered, err := f.svc.MarkDelivered(MarkDeliveredInput{
		OrderID:       order.ID,
		DeliveryBoyID: boy.ID,
		Notes:         "left with watchman",
		Lat:           &lat,
		Lng:           &lng,
	})
	if err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if delivered.Status != constants.OrderStatusDelivered || delivered.DeliveredAt == nil {
		t.Fatalf("order not marked delivered: %+v", delivered)
	}

	var reloadedBoy models.DeliveryBoy
	if err := f.db.First(&reloadedBoy, boy.ID).Error; err != nil {
		t.Fatalf("reload boy failed: %v", err)
	}
	if reloadedBoy.TotalDeliveries != 1 {
		t.Fatalf("total deliveries want 1, got %d", reloadedBoy.TotalDeliveries)
	}

	// Delivered is terminal.
	if _, err := f.svc.Cancel(order.ID, 0, true); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("cancel delivered want ErrOrderNotCancellable, got %v", err)
	}
}

func TestCreateOrderStampsAssignedDeliveryBoy(t *testing.T) {
	f := newOrderServiceFixture(t, "50", "")
	user := createTestUser(t, f.db, "asha@example.com")
	cat := createTestCategory(t, f.db, "milk")
	product := createTestProduct(t, f.db, cat.ID, "cow-milk-1l", 60, 5)
	boy := createTestBoy(t, f.db, "9876500001", true)

	userID := user.ID
	assignment := &models.UserDeliveryAssignment{
		UserID:        user.ID,
		ActiveKey:     &userID,
		DeliveryBoyID: boy.ID,
		IsActive:      true,
		AssignedBy:    models.ActorAdmin,
		AssignedAt:    time.Now(),
	}
	if err := f.db.Create(assignment).Error; err != nil {
		t.Fatalf("create assignment failed: %v", err)
	}

	order := f.placeOrder(t, user.ID, []CreateOrderItem{{ProductID: product.ID, Quantity: 1}})
	if order.DeliveryBoyID == nil || *order.DeliveryBoyID != boy.ID {
		t.Fatalf("new order should carry the assigned boy, got %v", order.DeliveryBoyID)
	}
}

func TestWorkQueueGroupsHouseholdsAndHonorsSequence(t *testing.T) {
	f := newOrderServiceFixture(t, "0", "")
	boy := createTestBoy(t, f.db, "9876500001", true)
	user1 := createTestUser(t, f.db, "asha@example.com")
	user2 := createTestUser(t, f.db, "meera@example.com")

	// Neither user carries a route sequence; user1 was assigned first.
	for i, u := range []*models.User{user1, user2} {
		userID := u.ID
		assignment := &models.UserDeliveryAssignment{
			UserID:        userID,
			ActiveKey:     &userID,
			DeliveryBoyID: boy.ID,
			IsActive:      true,
			AssignedBy:    models.ActorAdmin,
			AssignedAt:    istDate(2026, 3, 1, 8, 0).Add(time.Duration(i) * time.Hour),
		}
		if err := f.db.Create(assignment).Error; err != nil {
			t.Fatalf("create assignment failed: %v", err)
		}
	}

	date := istDate(2026, 3, 12, 0, 0)
	makeOrder := func(userID uint) *models.Order {
		order := &models.Order{
			OrderNo:       generateOrderNo(),
			UserID:        userID,
			Status:        constants.OrderStatusConfirmed,
			PaymentStatus: constants.PaymentStatusPending,
			PaymentMethod: constants.PaymentMethodCOD,
			ShippingAddr:  models.JSON{"area": "Sector 12"},
			DeliveryShift: constants.ShiftMorning,
			DeliveryDate:  date,
			Priority:      constants.PriorityNormal,
			DeliveryBoyID: &boy.ID,
		}
		if err := f.db.Create(order).Error; err != nil {
			t.Fatalf("create order failed: %v", err)
		}
		return order
	}
	first := makeOrder(user1.ID)
	other := makeOrder(user2.ID)
	second := makeOrder(user1.ID)

	// user2's order must not interleave user1's two.
	queue, err := f.svc.WorkQueue(boy.ID, date, constants.ShiftMorning)
	if err != nil {
		t.Fatalf("work queue failed: %v", err)
	}
	wantUsers := []uint{user1.ID, user1.ID, user2.ID}
	if len(queue) != 3 {
		t.Fatalf("queue size want 3, got %d", len(queue))
	}
	for i, o := range queue {
		if o.UserID != wantUsers[i] {
			t.Fatalf("households should stay contiguous, position %d want user %d got %d", i, wantUsers[i], o.UserID)
		}
	}
	if queue[0].ID != first.ID || queue[1].ID != second.ID {
		t.Fatalf("unsequenced orders should keep creation order, got %d then %d", queue[0].ID, queue[1].ID)
	}

	// An explicit per-order sequence reorders within the household.
	if err := f.svc.SetSequence(second.ID, 1); err != nil {
		t.Fatalf("set sequence failed: %v", err)
	}
	queue, err = f.svc.WorkQueue(boy.ID, date, constants.ShiftMorning)
	if err != nil {
		t.Fatalf("work queue failed: %v", err)
	}
	if queue[0].ID != second.ID || queue[1].ID != first.ID || queue[2].ID != other.ID {
		t.Fatalf("sequence should lead the household, got ids %d %d %d", queue[0].ID, queue[1].ID, queue[2].ID)
	}
}
