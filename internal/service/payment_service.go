package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/logger"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/queue"
	"github.com/dairydrop/internal/repository"
	"github.com/dairydrop/internal/upi"
)

// PaymentService manages UPI payment sessions. A session bundles one or
// more payable orders under a single deep link and QR; settlement is
// confirmed manually against the customer-supplied UTR.
type PaymentService struct {
	paymentRepo   repository.PaymentRepository
	orderRepo     repository.OrderRepository
	queueClient   *queue.Client
	upiID         string
	payeeName     string
	expireMinutes int
}

// NewPaymentService creates a payment service.
func NewPaymentService(paymentRepo repository.PaymentRepository, orderRepo repository.OrderRepository, queueClient *queue.Client, upiID, payeeName string, expireMinutes int) *PaymentService {
	if expireMinutes <= 0 {
		expireMinutes = 30
	}
	return &PaymentService{
		paymentRepo:   paymentRepo,
		orderRepo:     orderRepo,
		queueClient:   queueClient,
		upiID:         strings.TrimSpace(upiID),
		payeeName:     strings.TrimSpace(payeeName),
		expireMinutes: expireMinutes,
	}
}

// payable reports whether an order can enter a payment session: owned
// orders that were confirmed or delivered but not yet paid.
func payable(order *models.Order, userID uint) bool {
	if order.UserID != userID {
		return false
	}
	if order.Status != constants.OrderStatusConfirmed && order.Status != constants.OrderStatusDelivered {
		return false
	}
	switch order.PaymentStatus {
	case constants.PaymentStatusPending, constants.PaymentStatusFailed:
		return true
	}
	return false
}

// CreateSession opens a payment session over the given orders.
func (s *PaymentService) CreateSession(userID uint, orderIDs []uint) (*models.Payment, error) {
	if s.upiID == "" {
		return nil, ErrUPINotConfigured
	}
	orders, err := s.orderRepo.GetByIDs(orderIDs)
	if err != nil {
		return nil, err
	}
	eligible := make([]models.Order, 0, len(orders))
	total := decimal.Zero
	for i := range orders {
		if !payable(&orders[i], userID) {
			continue
		}
		eligible = append(eligible, orders[i])
		total = total.Add(orders[i].TotalAmount.Decimal)
	}
	if len(eligible) == 0 {
		return nil, ErrNoPayableOrders
	}

	now := time.Now()
	paymentID := fmt.Sprintf("PAY-%d-%s", now.UnixMilli(), randNumeric(4))
	referenceNo := fmt.Sprintf("REF-%d-%s", now.UnixMilli(), randNumeric(6))

	params := upi.LinkParams{
		PayeeVPA:    s.upiID,
		PayeeName:   s.payeeName,
		Amount:      total,
		ReferenceNo: referenceNo,
		Note:        fmt.Sprintf("%d order(s)", len(eligible)),
	}
	link := upi.BuildLink(params)
	qr, err := upi.BuildQR(params, 256)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		PaymentID:          paymentID,
		ReferenceNo:        referenceNo,
		UserID:             userID,
		TotalAmount:        models.NewMoneyFromDecimal(total),
		Status:             constants.PaymentSessionPending,
		VerificationStatus: constants.VerificationPending,
		UPILink:            link,
		QRCode:             qr,
		ExpiresAt:          now.Add(time.Duration(s.expireMinutes) * time.Minute),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	links := make([]models.PaymentOrder, 0, len(eligible))
	for _, order := range eligible {
		links = append(links, models.PaymentOrder{
			OrderID: order.ID,
			Amount:  order.TotalAmount,
		})
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		return s.paymentRepo.WithTx(tx).Create(payment, links)
	})
	if err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueuePaymentSessionExpire(queue.PaymentSessionExpirePayload{
		PaymentID: payment.ID,
	}, time.Until(payment.ExpiresAt)); err != nil {
		logger.Errorw("payment_enqueue_expire_failed",
			"payment_id", payment.PaymentID,
			"error", err,
		)
	}

	logger.Infow("payment_session_created",
		"payment_id", payment.PaymentID,
		"user_id", userID,
		"orders", len(eligible),
		"amount", payment.TotalAmount.String(),
	)
	return payment, nil
}

// GetSession returns a session owned by the user, applying expiry on
// read: a pending session past its deadline flips to cancelled before
// it is returned.
func (s *PaymentService) GetSession(paymentID string, userID uint) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByPaymentIDAndUser(paymentID, userID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if err := s.expireIfOverdue(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// MarkCompleted records the customer-supplied UPI transaction id (UTR).
// The session moves to completed / verification pending and its orders
// to paymentStatus processing, awaiting the admin check.
func (s *PaymentService) MarkCompleted(paymentID string, userID uint, transactionID string) (*models.Payment, error) {
	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, ErrMissingTransactionID
	}
	payment, err := s.paymentRepo.GetByPaymentIDAndUser(paymentID, userID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if err := s.expireIfOverdue(payment); err != nil {
		return nil, err
	}
	if payment.Status == constants.PaymentSessionCancelled {
		return nil, ErrPaymentExpired
	}
	if payment.Status != constants.PaymentSessionPending {
		return nil, ErrPaymentNotPending
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.WithTx(tx).UpdateFields(payment.ID, map[string]interface{}{
			"status":             constants.PaymentSessionCompleted,
			"upi_transaction_id": transactionID,
			"completed_at":       now,
			"updated_at":         now,
		}); err != nil {
			return err
		}
		return s.cascadePaymentStatus(tx, payment.ID, constants.PaymentStatusProcessing)
	})
	if err != nil {
		return nil, err
	}

	payment.Status = constants.PaymentSessionCompleted
	payment.UPITransactionID = transactionID
	payment.CompletedAt = &now
	logger.Infow("payment_marked_completed",
		"payment_id", payment.PaymentID,
		"transaction_id", transactionID,
	)
	return payment, nil
}

// Verify approves a completed session. VerifiedBy carries either the
// admin sentinel or a user:<id> tag. Linked orders cascade to paid.
func (s *PaymentService) Verify(paymentID string, verifiedBy models.ActorRef) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByPaymentID(paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status != constants.PaymentSessionCompleted ||
		payment.VerificationStatus != constants.VerificationPending {
		return nil, ErrPaymentNotVerifiable
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.WithTx(tx).UpdateFields(payment.ID, map[string]interface{}{
			"verification_status": constants.VerificationVerified,
			"verified_by":         string(verifiedBy),
			"verified_at":         now,
			"updated_at":          now,
		}); err != nil {
			return err
		}
		return s.cascadePaymentStatus(tx, payment.ID, constants.PaymentStatusPaid)
	})
	if err != nil {
		return nil, err
	}

	payment.VerificationStatus = constants.VerificationVerified
	payment.VerifiedBy = verifiedBy
	payment.VerifiedAt = &now
	logger.Infow("payment_verified",
		"payment_id", payment.PaymentID,
		"verified_by", string(verifiedBy),
	)
	return payment, nil
}

// Reject declines a completed session; linked orders fall back to
// paymentStatus pending so the customer can retry with a new session.
func (s *PaymentService) Reject(paymentID string, verifiedBy models.ActorRef, reason string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetByPaymentID(paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	if payment.Status != constants.PaymentSessionCompleted ||
		payment.VerificationStatus != constants.VerificationPending {
		return nil, ErrPaymentNotVerifiable
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.paymentRepo.WithTx(tx).UpdateFields(payment.ID, map[string]interface{}{
			"verification_status": constants.VerificationRejected,
			"verified_by":         string(verifiedBy),
			"verified_at":         now,
			"rejection_reason":    strings.TrimSpace(reason),
			"status":              constants.PaymentSessionFailed,
			"updated_at":          now,
		}); err != nil {
			return err
		}
		return s.cascadePaymentStatus(tx, payment.ID, constants.PaymentStatusPending)
	})
	if err != nil {
		return nil, err
	}

	payment.VerificationStatus = constants.VerificationRejected
	payment.Status = constants.PaymentSessionFailed
	payment.VerifiedBy = verifiedBy
	payment.VerifiedAt = &now
	payment.RejectionReason = strings.TrimSpace(reason)
	logger.Infow("payment_rejected",
		"payment_id", payment.PaymentID,
		"verified_by", string(verifiedBy),
		"reason", reason,
	)
	return payment, nil
}

// ExpireSession is the worker entry point for the delayed expiry task.
// It is idempotent: a session that completed in the meantime is left
// alone.
func (s *PaymentService) ExpireSession(id uint) error {
	payment, err := s.paymentRepo.GetByID(id)
	if err != nil {
		return err
	}
	if payment == nil || payment.Status != constants.PaymentSessionPending {
		return nil
	}
	return s.expireIfOverdue(payment)
}

// ListAdmin returns payment sessions for the back office.
func (s *PaymentService) ListAdmin(filter repository.PaymentListFilter) ([]models.Payment, int64, error) {
	return s.paymentRepo.List(filter)
}

// VerificationQueue returns sessions awaiting the admin check.
func (s *PaymentService) VerificationQueue(page, pageSize int) ([]models.Payment, int64, error) {
	return s.paymentRepo.List(repository.PaymentListFilter{
		Page:               page,
		PageSize:           pageSize,
		Status:             constants.PaymentSessionCompleted,
		VerificationStatus: constants.VerificationPending,
	})
}

func (s *PaymentService) expireIfOverdue(payment *models.Payment) error {
	if payment.Status != constants.PaymentSessionPending || !payment.Expired(time.Now()) {
		return nil
	}
	now := time.Now()
	if err := s.paymentRepo.UpdateFields(payment.ID, map[string]interface{}{
		"status":     constants.PaymentSessionCancelled,
		"updated_at": now,
	}); err != nil {
		return err
	}
	payment.Status = constants.PaymentSessionCancelled
	logger.Infow("payment_session_expired", "payment_id", payment.PaymentID)
	return nil
}

// cascadePaymentStatus pushes a payment status onto every order the
// session covers.
func (s *PaymentService) cascadePaymentStatus(tx *gorm.DB, paymentID uint, status string) error {
	paymentRepo := s.paymentRepo.WithTx(tx)
	orderRepo := s.orderRepo.WithTx(tx)
	orderIDs, err := paymentRepo.ListOrderIDs(paymentID)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, orderID := range orderIDs {
		if err := orderRepo.UpdateFields(orderID, map[string]interface{}{
			"payment_status": status,
			"updated_at":     now,
		}); err != nil {
			return err
		}
	}
	return nil
}
