package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/repository"
)

type paymentFixture struct {
	db  *gorm.DB
	svc *PaymentService
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	db := setupServiceDB(t)
	svc := NewPaymentService(
		repository.NewPaymentRepository(db),
		repository.NewOrderRepository(db),
		disabledQueueClient(t),
		"dairydrop@upi", "DairyDrop", 30,
	)
	return &paymentFixture{db: db, svc: svc}
}

func (f *paymentFixture) createOrder(t *testing.T, userID uint, status, paymentStatus string, amount int64) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo:       generateOrderNo(),
		UserID:        userID,
		Status:        status,
		PaymentStatus: paymentStatus,
		PaymentMethod: constants.PaymentMethodUPI,
		TotalAmount:   models.NewMoneyFromInt(amount),
		ShippingAddr:  models.JSON{"area": "Sector 12"},
		DeliveryShift: constants.ShiftMorning,
		DeliveryDate:  istDate(2026, 3, 11, 0, 0),
		Priority:      constants.PriorityNormal,
	}
	if err := f.db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	return order
}

func (f *paymentFixture) orderPaymentStatus(t *testing.T, id uint) string {
	t.Helper()
	var order models.Order
	if err := f.db.First(&order, id).Error; err != nil {
		t.Fatalf("load order failed: %v", err)
	}
	return order.PaymentStatus
}

func TestCreateSessionBundlesPayableOrders(t *testing.T) {
	f := newPaymentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	confirmed := f.createOrder(t, user.ID, constants.OrderStatusConfirmed, constants.PaymentStatusPending, 170)
	delivered := f.createOrder(t, user.ID, constants.OrderStatusDelivered, constants.PaymentStatusPending, 120)
	pending := f.createOrder(t, user.ID, constants.OrderStatusPending, constants.PaymentStatusPending, 60)
	paid := f.createOrder(t, user.ID, constants.OrderStatusConfirmed, constants.PaymentStatusPaid, 90)

	payment, err := f.svc.CreateSession(user.ID, []uint{confirmed.ID, delivered.ID, pending.ID, paid.ID})
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	if got := payment.TotalAmount.String(); got != "290.00" {
		t.Fatalf("session total want 290.00, got %s", got)
	}
	if !strings.HasPrefix(payment.PaymentID, "PAY-") || !strings.HasPrefix(payment.ReferenceNo, "REF-") {
		t.Fatalf("unexpected identifiers: %s / %s", payment.PaymentID, payment.ReferenceNo)
	}
	if !strings.HasPrefix(payment.UPILink, "upi://pay?") {
		t.Fatalf("unexpected upi link: %s", payment.UPILink)
	}
	if !strings.HasPrefix(payment.QRCode, "data:image/png;base64,") {
		t.Fatalf("qr code should be a png data uri")
	}

	var links int64
	if err := f.db.Model(&models.PaymentOrder{}).Where("payment_id = ?", payment.ID).Count(&links).Error; err != nil {
		t.Fatalf("count links failed: %v", err)
	}
	if links != 2 {
		t.Fatalf("only payable orders should link, want 2 got %d", links)
	}
}

func TestCreateSessionNoPayableOrders(t *testing.T) {
	f := newPaymentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	other := createTestUser(t, f.db, "meera@example.com")
	pending := f.createOrder(t, user.ID, constants.OrderStatusPending, constants.PaymentStatusPending, 60)
	foreign := f.createOrder(t, other.ID, constants.OrderStatusConfirmed, constants.PaymentStatusPending, 60)

	_, err := f.svc.CreateSession(user.ID, []uint{pending.ID, foreign.ID})
	if !errors.Is(err, ErrNoPayableOrders) {
		t.Fatalf("want ErrNoPayableOrders, got %v", err)
	}
}

func TestMarkCompletedCascadesProcessing(t *testing.T) {
	f := newPaymentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	order := f.createOrder(t, user.ID, constants.OrderStatusConfirmed, constants.PaymentStatusPending, 170)
	payment, err := f.svc.CreateSession(user.ID, []uint{order.ID})
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	if _, err := f.svc.MarkCompleted(payment.PaymentID, user.ID, "  "); !errors.Is(err, ErrMissingTransactionID) {
		t.Fatalf("blank UTR want ErrMissingTransactionID, got %v", err)
	}

	completed, err := f.svc.MarkCompleted(payment.PaymentID, user.ID, "UTR1234567890")
	if err != nil {
		t.Fatalf("mark completed failed: %v", err)
	}
	if completed.Status != constants.PaymentSessionCompleted || completed.UPITransactionID != "UTR1234567890" {
		t.Fatalf("unexpected session state: %+v", completed)
	}
	if got := f.orderPaymentStatus(t, order.ID); got != constants.PaymentStatusProcessing {
		t.Fatalf("order payment status want processing, got %s", got)
	}

	if _, err := f.svc.MarkCompleted(payment.PaymentID, user.ID, "UTR-AGAIN"); !errors.Is(err, ErrPaymentNotPending) {
		t.Fatalf("double complete want ErrPaymentNotPending, got %v", err)
	}
}

func TestVerifyCascadesPaid(t *testing.T) {
	f := newPaymentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	order1 := f.createOrder(t, user.ID, constants.OrderStatusConfirmed, constants.PaymentStatusPending, 170)
	order2 := f.createOrder(t, user.ID, constants.OrderStatusDelivered, constants.PaymentStatusPending, 120)
	payment, err := f.svc.CreateSession(user.ID, []uint{order1.ID, order2.ID})
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	// A session still awaiting the customer cannot be verified.
	if _, err := f.svc.Verify(payment.PaymentID, models.ActorAdmin); !errors.Is(err, ErrPaymentNotVerifiable) {
		t.Fatalf("verify pending session want ErrPaymentNotVerifiable, got %v", err)
	}

	if _, err := f.svc.MarkCompleted(payment.PaymentID, user.ID, "UTR1234567890"); err != nil {
		t.Fatalf("mark completed failed: %v", err)
	}
	verified, err := f.svc.Verify(payment.PaymentID, models.ActorAdmin)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if verified.VerificationStatus != constants.VerificationVerified || verified.VerifiedBy != models.ActorAdmin {
		t.Fatalf("unexpected verification state: %+v", verified)
	}
	for _, id := range []uint{order1.ID, order2.ID} {
		if got := f.orderPaymentStatus(t, id); got != constants.PaymentStatusPaid {
			t.Fatalf("order %d payment status want paid, got %s", id, got)
		}
	}

	if _, err := f.svc.Verify(payment.PaymentID, models.ActorAdmin); !errors.Is(err, ErrPaymentNotVerifiable) {
		t.Fatalf("double verify want ErrPaymentNotVerifiable, got %v", err)
	}
}

func TestRejectResetsOrdersToPending(t *testing.T) {
	f := newPaymentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	order := f.createOrder(t, user.ID, constants.OrderStatusConfirmed, constants.PaymentStatusPending, 170)
	payment, err := f.svc.CreateSession(user.ID, []uint{order.ID})
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	if _, err := f.svc.MarkCompleted(payment.PaymentID, user.ID, "UTR1234567890"); err != nil {
		t.Fatalf("mark completed failed: %v", err)
	}

	rejected, err := f.svc.Reject(payment.PaymentID, models.ActorAdmin, "UTR not found in statement")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.PaymentSessionFailed || rejected.VerificationStatus != constants.VerificationRejected {
		t.Fatalf("unexpected session state: %+v", rejected)
	}
	if rejected.RejectionReason != "UTR not found in statement" {
		t.Fatalf("rejection reason not recorded: %q", rejected.RejectionReason)
	}
	if got := f.orderPaymentStatus(t, order.ID); got != constants.PaymentStatusPending {
		t.Fatalf("rejected order should fall back to pending, got %s", got)
	}

	// The customer can open a fresh session for the same order.
	if _, err := f.svc.CreateSession(user.ID, []uint{order.ID}); err != nil {
		t.Fatalf("retry session failed: %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	f := newPaymentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	order := f.createOrder(t, user.ID, constants.OrderStatusConfirmed, constants.PaymentStatusPending, 170)
	payment, err := f.svc.CreateSession(user.ID, []uint{order.ID})
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	// Push the deadline into the past.
	if err := f.db.Model(&models.Payment{}).Where("id = ?", payment.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error; err != nil {
		t.Fatalf("backdate expiry failed: %v", err)
	}

	got, err := f.svc.GetSession(payment.PaymentID, user.ID)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if got.Status != constants.PaymentSessionCancelled {
		t.Fatalf("overdue session should read as cancelled, got %s", got.Status)
	}

	if _, err := f.svc.MarkCompleted(payment.PaymentID, user.ID, "UTR-LATE"); !errors.Is(err, ErrPaymentExpired) {
		t.Fatalf("completing an expired session want ErrPaymentExpired, got %v", err)
	}

	// ExpireSession is idempotent on terminal sessions.
	if err := f.svc.ExpireSession(payment.ID); err != nil {
		t.Fatalf("expire sweep failed: %v", err)
	}
}

func TestVerificationQueueFiltersAwaitingSessions(t *testing.T) {
	f := newPaymentFixture(t)
	user := createTestUser(t, f.db, "asha@example.com")
	order1 := f.createOrder(t, user.ID, constants.OrderStatusConfirmed, constants.PaymentStatusPending, 170)
	order2 := f.createOrder(t, user.ID, constants.OrderStatusConfirmed, constants.PaymentStatusPending, 120)

	awaiting, err := f.svc.CreateSession(user.ID, []uint{order1.ID})
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	if _, err := f.svc.MarkCompleted(awaiting.PaymentID, user.ID, "UTR1234567890"); err != nil {
		t.Fatalf("mark completed failed: %v", err)
	}
	if _, err := f.svc.CreateSession(user.ID, []uint{order2.ID}); err != nil {
		t.Fatalf("create second session failed: %v", err)
	}

	queue, total, err := f.svc.VerificationQueue(1, 20)
	if err != nil {
		t.Fatalf("verification queue failed: %v", err)
	}
	if total != 1 || len(queue) != 1 {
		t.Fatalf("queue want exactly 1 awaiting session, got total=%d len=%d", total, len(queue))
	}
	if queue[0].PaymentID != awaiting.PaymentID {
		t.Fatalf("queue should hold the completed session, got %s", queue[0].PaymentID)
	}
}
