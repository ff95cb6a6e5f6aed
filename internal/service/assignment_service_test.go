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

type assignmentFixture struct {
	db  *gorm.DB
	svc *AssignmentService
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	db := setupServiceDB(t)
	svc := NewAssignmentService(
		repository.NewAssignmentRepository(db),
		repository.NewOrderRepository(db),
		repository.NewUserRepository(db),
		repository.NewDeliveryBoyRepository(db),
	)
	return &assignmentFixture{db: db, svc: svc}
}

// createOpenOrder writes an order directly; only the fields the cascade
// paths read are populated.
func (f *assignmentFixture) createOpenOrder(t *testing.T, userID uint, status string, boyID *uint, deliveryDate time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       generateOrderNo(),
		UserID:        userID,
		Status:        status,
		PaymentStatus: constants.PaymentStatusPending,
		PaymentMethod: constants.PaymentMethodCOD,
		ShippingAddr:  models.JSON{"area": "Sector 12"},
		DeliveryShift: constants.ShiftMorning,
		DeliveryDate:  deliveryDate,
		Priority:      constants.PriorityNormal,
		DeliveryBoyID: boyID,
	}
	if err := f.db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func (f *assignmentFixture) backdateOrder(t *testing.T, orderID uint, createdAt time.Time) {
	t.Helper()
	if err := f.db.Model(&models.Order{}).Where("id = ?", orderID).
		UpdateColumn("created_at", createdAt).Error; err != nil {
		t.Fatalf("backdate order failed: %v", err)
	}
}

func (f *assignmentFixture) orderBoy(t *testing.T, orderID uint) *uint {
	t.Helper()
	var order models.Order
	if err := f.db.First(&order, orderID).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	return order.DeliveryBoyID
}

func TestAssignPropagatesToOpenOrders(t *testing.T) {
	f := newAssignmentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	boy := createTestBoy(t, f.db, "9876500001", true)
	date := istDate(2026, 3, 12, 0, 0)
	pending := f.createOpenOrder(t, user.ID, constants.OrderStatusPending, nil, date)
	confirmed := f.createOpenOrder(t, user.ID, constants.OrderStatusConfirmed, nil, date)
	delivered := f.createOpenOrder(t, user.ID, constants.OrderStatusDelivered, nil, date)

	assignment, err := f.svc.Assign(AssignInput{
		UserID:        user.ID,
		DeliveryBoyID: boy.ID,
		AssignedBy:    models.ActorAdmin,
	})
	if err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if !assignment.IsActive || assignment.ActiveKey == nil {
		t.Fatalf("assignment should be active: %+v", assignment)
	}
	for _, id := range []uint{pending.ID, confirmed.ID} {
		if got := f.orderBoy(t, id); got == nil || *got != boy.ID {
			t.Fatalf("open order %d should be stamped with boy %d, got %v", id, boy.ID, got)
		}
	}
	if got := f.orderBoy(t, delivered.ID); got != nil {
		t.Fatalf("terminal order must not be touched, got %v", got)
	}
}

func TestAssignReplacesExistingAssignment(t *testing.T) {
	f := newAssignmentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	boy1 := createTestBoy(t, f.db, "9876500001", true)
	boy2 := createTestBoy(t, f.db, "9876500002", true)
	order := f.createOpenOrder(t, user.ID, constants.OrderStatusPending, nil, istDate(2026, 3, 12, 0, 0))

	first, err := f.svc.Assign(AssignInput{UserID: user.ID, DeliveryBoyID: boy1.ID, AssignedBy: models.ActorAdmin})
	if err != nil {
		t.Fatalf("first assign failed: %v", err)
	}
	if _, err := f.svc.Assign(AssignInput{UserID: user.ID, DeliveryBoyID: boy2.ID, AssignedBy: models.ActorAdmin}); err != nil {
		t.Fatalf("second assign failed: %v", err)
	}

	var old models.UserDeliveryAssignment
	if err := f.db.First(&old, first.ID).Error; err != nil {
		t.Fatalf("load old assignment failed: %v", err)
	}
	if old.IsActive || old.ActiveKey != nil || old.DeactivatedAt == nil {
		t.Fatalf("old assignment should be deactivated: %+v", old)
	}

	active, err := f.svc.GetActiveForUser(user.ID)
	if err != nil {
		t.Fatalf("get active failed: %v", err)
	}
	if active == nil || active.DeliveryBoyID != boy2.ID {
		t.Fatalf("active assignment should point at boy2, got %+v", active)
	}
	if got := f.orderBoy(t, order.ID); got == nil || *got != boy2.ID {
		t.Fatalf("order should follow the new boy, got %v", got)
	}

	var activeCount int64
	if err := f.db.Model(&models.UserDeliveryAssignment{}).Where("user_id = ? AND is_active = ?", user.ID, true).Count(&activeCount).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if activeCount != 1 {
		t.Fatalf("exactly one active assignment expected, got %d", activeCount)
	}
}

func TestAssignRejectsInactiveBoy(t *testing.T) {
	f := newAssignmentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	boy := createTestBoy(t, f.db, "9876500001", false)

	_, err := f.svc.Assign(AssignInput{UserID: user.ID, DeliveryBoyID: boy.ID, AssignedBy: models.ActorAdmin})
	if !errors.Is(err, ErrDeliveryBoyInactive) {
		t.Fatalf("want ErrDeliveryBoyInactive, got %v", err)
	}
}

func TestRemoveStripsOpenOrders(t *testing.T) {
	f := newAssignmentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	boy := createTestBoy(t, f.db, "9876500001", true)
	order := f.createOpenOrder(t, user.ID, constants.OrderStatusPending, nil, istDate(2026, 3, 12, 0, 0))

	if _, err := f.svc.Assign(AssignInput{UserID: user.ID, DeliveryBoyID: boy.ID, AssignedBy: models.ActorAdmin}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if err := f.svc.Remove(user.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if got := f.orderBoy(t, order.ID); got != nil {
		t.Fatalf("open order should be stripped, got %v", got)
	}
	active, err := f.svc.GetActiveForUser(user.ID)
	if err != nil {
		t.Fatalf("get active failed: %v", err)
	}
	if active != nil {
		t.Fatalf("no active assignment expected, got %+v", active)
	}
	if err := f.svc.Remove(user.ID); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("second remove want ErrAssignmentNotFound, got %v", err)
	}
}

func TestReassignEntire(t *testing.T) {
	f := newAssignmentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	boy1 := createTestBoy(t, f.db, "9876500001", true)
	boy2 := createTestBoy(t, f.db, "9876500002", true)

	if _, err := f.svc.Assign(AssignInput{UserID: user.ID, DeliveryBoyID: boy1.ID, AssignedBy: models.ActorAdmin}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	if _, err := f.svc.Reassign(ReassignInput{
		UserID:     user.ID,
		ToBoyID:    boy1.ID,
		Mode:       constants.ReassignModeEntire,
		AssignedBy: models.ActorAdmin,
	}); !errors.Is(err, ErrSameDeliveryBoy) {
		t.Fatalf("same boy want ErrSameDeliveryBoy, got %v", err)
	}

	next, err := f.svc.Reassign(ReassignInput{
		UserID:     user.ID,
		ToBoyID:    boy2.ID,
		Mode:       constants.ReassignModeEntire,
		AssignedBy: models.ActorAdmin,
	})
	if err != nil {
		t.Fatalf("reassign failed: %v", err)
	}
	if next.DeliveryBoyID != boy2.ID || !next.IsActive {
		t.Fatalf("unexpected replacement assignment: %+v", next)
	}
}

func TestReassignDateRangeMovesOnlyWindowOrders(t *testing.T) {
	f := newAssignmentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	boy1 := createTestBoy(t, f.db, "9876500001", true)
	boy2 := createTestBoy(t, f.db, "9876500002", true)

	if _, err := f.svc.Assign(AssignInput{UserID: user.ID, DeliveryBoyID: boy1.ID, AssignedBy: models.ActorAdmin}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	// The window selects by placement time, not delivery date.
	inside := f.createOpenOrder(t, user.ID, constants.OrderStatusConfirmed, &boy1.ID, istDate(2026, 3, 21, 0, 0))
	outside := f.createOpenOrder(t, user.ID, constants.OrderStatusConfirmed, &boy1.ID, istDate(2026, 3, 21, 0, 0))
	f.backdateOrder(t, inside.ID, istDate(2026, 3, 12, 9, 0))
	f.backdateOrder(t, outside.ID, istDate(2026, 3, 20, 9, 0))

	from := istDate(2026, 3, 11, 0, 0)
	to := istDate(2026, 3, 14, 0, 0)
	if _, err := f.svc.Reassign(ReassignInput{
		UserID:     user.ID,
		ToBoyID:    boy2.ID,
		Mode:       constants.ReassignModeDateRange,
		DateFrom:   &from,
		DateTo:     &to,
		AssignedBy: models.ActorAdmin,
	}); err != nil {
		t.Fatalf("date-range reassign failed: %v", err)
	}

	if got := f.orderBoy(t, inside.ID); got == nil || *got != boy2.ID {
		t.Fatalf("in-window order should move to boy2, got %v", got)
	}
	if got := f.orderBoy(t, outside.ID); got == nil || *got != boy1.ID {
		t.Fatalf("out-of-window order must stay with boy1, got %v", got)
	}

	// The standing assignment is untouched.
	active, err := f.svc.GetActiveForUser(user.ID)
	if err != nil {
		t.Fatalf("get active failed: %v", err)
	}
	if active == nil || active.DeliveryBoyID != boy1.ID {
		t.Fatalf("standing assignment should remain with boy1, got %+v", active)
	}
}

func TestReassignDateRangeValidation(t *testing.T) {
	f := newAssignmentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	boy1 := createTestBoy(t, f.db, "9876500001", true)
	boy2 := createTestBoy(t, f.db, "9876500002", true)

	if _, err := f.svc.Assign(AssignInput{UserID: user.ID, DeliveryBoyID: boy1.ID, AssignedBy: models.ActorAdmin}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	from := istDate(2026, 3, 14, 0, 0)
	to := istDate(2026, 3, 11, 0, 0)
	if _, err := f.svc.Reassign(ReassignInput{
		UserID:     user.ID,
		ToBoyID:    boy2.ID,
		Mode:       constants.ReassignModeDateRange,
		DateFrom:   &from,
		DateTo:     &to,
		AssignedBy: models.ActorAdmin,
	}); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("inverted range want ErrInvalidDateRange, got %v", err)
	}

	if _, err := f.svc.Reassign(ReassignInput{
		UserID:     user.ID,
		ToBoyID:    boy2.ID,
		Mode:       "weekly",
		AssignedBy: models.ActorAdmin,
	}); !errors.Is(err, ErrInvalidReassignMode) {
		t.Fatalf("unknown mode want ErrInvalidReassignMode, got %v", err)
	}
}

func TestBulkTransfer(t *testing.T) {
	f := newAssignmentFixture(t)
	user1 := createTestUser(t, f.db, "asha@example.com")
	user2 := createTestUser(t, f.db, "meera@example.com")
	boy1 := createTestBoy(t, f.db, "9876500001", true)
	boy2 := createTestBoy(t, f.db, "9876500002", true)

	for _, u := range []*models.User{user1, user2} {
		if _, err := f.svc.Assign(AssignInput{UserID: u.ID, DeliveryBoyID: boy1.ID, AssignedBy: models.ActorAdmin}); err != nil {
			t.Fatalf("assign failed: %v", err)
		}
	}
	order := f.createOpenOrder(t, user1.ID, constants.OrderStatusConfirmed, &boy1.ID, istDate(2026, 3, 12, 0, 0))

	moved, err := f.svc.BulkTransfer(boy1.ID, boy2.ID, models.ActorAdmin)
	if err != nil {
		t.Fatalf("bulk transfer failed: %v", err)
	}
	if moved != 2 {
		t.Fatalf("moved want 2, got %d", moved)
	}
	for _, u := range []*models.User{user1, user2} {
		active, err := f.svc.GetActiveForUser(u.ID)
		if err != nil {
			t.Fatalf("get active failed: %v", err)
		}
		if active == nil || active.DeliveryBoyID != boy2.ID {
			t.Fatalf("user %d should now belong to boy2, got %+v", u.ID, active)
		}
	}
	if got := f.orderBoy(t, order.ID); got == nil || *got != boy2.ID {
		t.Fatalf("open order should move to boy2, got %v", got)
	}

	if _, err := f.svc.BulkTransfer(boy1.ID, boy1.ID, models.ActorAdmin); !errors.Is(err, ErrSameDeliveryBoy) {
		t.Fatalf("self transfer want ErrSameDeliveryBoy, got %v", err)
	}
}

func TestRosterOrdersBySequence(t *testing.T) {
	f := newAssignmentFixture(t)
	user1 := createTestUser(t, f.db, "asha@example.com")
	user2 := createTestUser(t, f.db, "meera@example.com")
	boy := createTestBoy(t, f.db, "9876500001", true)

	if _, err := f.svc.Assign(AssignInput{UserID: user1.ID, DeliveryBoyID: boy.ID, Sequence: 20, AssignedBy: models.ActorAdmin}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if _, err := f.svc.Assign(AssignInput{UserID: user2.ID, DeliveryBoyID: boy.ID, Sequence: 10, AssignedBy: models.ActorAdmin}); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	roster, err := f.svc.Roster(boy.ID)
	if err != nil {
		t.Fatalf("roster failed: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("roster size want 2, got %d", len(roster))
	}
	if roster[0].UserID != user2.ID {
		t.Fatalf("roster should be sequence-ordered, first user want %d got %d", user2.ID, roster[0].UserID)
	}
}
