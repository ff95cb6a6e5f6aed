package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/logger"
	"github.com/dairydrop/internal/models"
	"github.com/dairydrop/internal/queue"
	"github.com/dairydrop/internal/repository"
)

// allowedTransitions is the order status machine. Delivered and
// cancelled are terminal.
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusConfirmed: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusConfirmed: {
		constants.OrderStatusDelivered: true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusDelivered: {},
	constants.OrderStatusCancelled: {},
}

func isTransitionAllowed(current, target string) bool {
	nexts, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return nexts[target]
}

// OrderService owns the order lifecycle.
type OrderService struct {
	orderRepo         repository.OrderRepository
	productRepo       repository.ProductRepository
	userRepo          repository.UserRepository
	deliveryBoyRepo   repository.DeliveryBoyRepository
	assignmentRepo    repository.AssignmentRepository
	cartRepo          repository.CartRepository
	slotSvc           *SlotService
	queueClient       *queue.Client
	shippingFee       decimal.Decimal
	freeShippingAbove *decimal.Decimal
}

// NewOrderService creates an order service. shippingFee and
// freeShippingAbove are decimal strings from configuration; an empty
// threshold disables free shipping.
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository, deliveryBoyRepo repository.DeliveryBoyRepository, assignmentRepo repository.AssignmentRepository, cartRepo repository.CartRepository, slotSvc *SlotService, queueClient *queue.Client, shippingFee, freeShippingAbove string) *OrderService {
	fee, err := decimal.NewFromString(strings.TrimSpace(shippingFee))
	if err != nil {
		fee = decimal.Zero
	}
	var threshold *decimal.Decimal
	if trimmed := strings.TrimSpace(freeShippingAbove); trimmed != "" {
		if v, err := decimal.NewFromString(trimmed); err == nil && v.GreaterThan(decimal.Zero) {
			threshold = &v
		}
	}
	return &OrderService{
		orderRepo:         orderRepo,
		productRepo:       productRepo,
		userRepo:          userRepo,
		deliveryBoyRepo:   deliveryBoyRepo,
		assignmentRepo:    assignmentRepo,
		cartRepo:          cartRepo,
		slotSvc:           slotSvc,
		queueClient:       queueClient,
		shippingFee:       fee,
		freeShippingAbove: threshold,
	}
}

// CreateOrderItem is one requested line in a new order.
type CreateOrderItem struct {
	ProductID uint
	Quantity  int
}

// CreateOrderInput is the order creation request.
type CreateOrderInput struct {
	UserID        uint
	Items         []CreateOrderItem
	PaymentMethod string
	DeliveryDate  time.Time
	DeliveryShift string
	CustomerNotes string
	FromCart      bool
}

var validPaymentMethods = map[string]bool{
	constants.PaymentMethodCOD:    true,
	constants.PaymentMethodCard:   true,
	constants.PaymentMethodUPI:    true,
	constants.PaymentMethodWallet: true,
}

// Create places a new order in status pending. Stock is checked but not
// decremented; the decrement happens on admin confirmation.
func (s *OrderService) Create(input CreateOrderInput) (*models.Order, error) {
	items, err := mergeCreateOrderItems(input.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !validPaymentMethods[input.PaymentMethod] {
		return nil, ErrInvalidPaymentMethod
	}
	if err := s.slotSvc.ValidateSlot(input.DeliveryDate, input.DeliveryShift); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.AddressLine == "" || user.Area == "" || user.Pincode == "" {
		return nil, ErrAddressIncomplete
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[uint]*models.Product, len(products))
	for i := range products {
		productsByID[products[i].ID] = &products[i]
	}

	subtotal := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product, ok := productsByID[item.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if product.Status == constants.ProductStatusInactive {
			return nil, ErrProductInactive
		}
		if !product.Orderable(item.Quantity) {
			return nil, fmt.Errorf("%w: %s (available %d)", ErrInsufficientStock, product.Name, product.StockQuantity)
		}
		unitPrice := product.EffectivePrice()
		lineTotal := unitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		orderItems = append(orderItems, models.OrderItem{
			ProductID:  product.ID,
			Name:       product.Name,
			Unit:       product.Unit,
			Image:      image,
			UnitPrice:  unitPrice,
			Quantity:   item.Quantity,
			TotalPrice: models.NewMoneyFromDecimal(lineTotal),
		})
	}

	shipping := s.shippingFee
	if s.freeShippingAbove != nil && subtotal.GreaterThanOrEqual(*s.freeShippingAbove) {
		shipping = decimal.Zero
	}
	tax := decimal.Zero
	discount := decimal.Zero
	total := subtotal.Add(shipping).Add(tax).Sub(discount)

	boyID, err := activeDeliveryBoyID(s.assignmentRepo, input.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		OrderNo:       generateOrderNo(),
		UserID:        input.UserID,
		Status:        constants.OrderStatusPending,
		PaymentStatus: constants.PaymentStatusPending,
		PaymentMethod: input.PaymentMethod,
		Subtotal:      models.NewMoneyFromDecimal(subtotal),
		ShippingFee:   models.NewMoneyFromDecimal(shipping),
		Tax:           models.NewMoneyFromDecimal(tax),
		Discount:      models.NewMoneyFromDecimal(discount),
		TotalAmount:   models.NewMoneyFromDecimal(total),
		ShippingAddr: models.JSON{
			"address_line": user.AddressLine,
			"area":         user.Area,
			"city":         user.City,
			"pincode":      user.Pincode,
			"landmark":     user.Landmark,
			"phone":        user.Phone,
			"name":         user.Name,
		},
		DeliveryShift: input.DeliveryShift,
		DeliveryDate:  civilDate(input.DeliveryDate),
		CustomerNotes: strings.TrimSpace(input.CustomerNotes),
		Priority:      constants.PriorityNormal,
		DeliveryBoyID: boyID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		if err := orderRepo.Create(order, orderItems); err != nil {
			return err
		}
		if input.FromCart && s.cartRepo != nil {
			if err := s.cartRepo.WithTx(tx).Clear(input.UserID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrOrderNoConflict
		}
		return nil, err
	}
	order.Items = orderItems

	s.enqueueStatusEmail(order, "")
	logger.Infow("order_created",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"user_id", order.UserID,
		"total", order.TotalAmount.String(),
	)
	return order, nil
}

// Confirm moves a pending order to confirmed, atomically decrementing
// stock for every line item. Either all decrements apply or none: a
// failed conditional update aborts the transaction, which rolls the
// earlier decrements back. Re-confirming a confirmed order is rejected
// before any decrement runs.
func (s *OrderService) Confirm(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusPending {
		return nil, ErrInvalidTransition
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		productRepo := s.productRepo.WithTx(tx)
		for _, item := range order.Items {
			affected, err := productRepo.DecrementStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				product, err := productRepo.GetByID(item.ProductID)
				available := 0
				name := item.Name
				if err == nil && product != nil {
					available = product.StockQuantity
					name = product.Name
				}
				return fmt.Errorf("%w: %s (available %d)", ErrInsufficientStock, name, available)
			}
			if err := s.rederiveProductStatus(productRepo, item.ProductID); err != nil {
				return err
			}
		}
		return s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusConfirmed, map[string]interface{}{
			"updated_at": time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	order.Status = constants.OrderStatusConfirmed
	s.enqueueStatusEmail(order, constants.OrderStatusPending)
	logger.Infow("order_confirmed", "order_id", order.ID, "order_no", order.OrderNo)
	return order, nil
}

// Cancel cancels an order. Customers are held to the shift cutoffs
// (morning orders until 20:00 IST the previous day, evening until 14:00
// IST the same day); admins are not. Cancelling a confirmed order
// restores stock; cancelling a pending one does not, because nothing
// was decremented. Paid orders flip to refunded.
func (s *OrderService) Cancel(orderID uint, userID uint, byAdmin bool) (*models.Order, error) {
	var order *models.Order
	var err error
	if byAdmin {
		order, err = s.orderRepo.GetByID(orderID)
	} else {
		order, err = s.orderRepo.GetByIDAndUser(orderID, userID)
	}
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !isTransitionAllowed(order.Status, constants.OrderStatusCancelled) {
		return nil, ErrOrderNotCancellable
	}
	if !byAdmin && !s.slotSvc.CancellationOpen(order.DeliveryDate, order.DeliveryShift) {
		return nil, ErrCancelWindowClosed
	}

	restoreStock := order.Status == constants.OrderStatusConfirmed
	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		if restoreStock {
			productRepo := s.productRepo.WithTx(tx)
			for _, item := range order.Items {
				if _, err := productRepo.RestoreStock(item.ProductID, item.Quantity); err != nil {
					return err
				}
				if err := s.rederiveProductStatus(productRepo, item.ProductID); err != nil {
					return err
				}
			}
		}
		updates := map[string]interface{}{
			"cancelled_at": now,
			"updated_at":   now,
		}
		if order.PaymentStatus == constants.PaymentStatusPaid {
			updates["payment_status"] = constants.PaymentStatusRefunded
		}
		return s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusCancelled, updates)
	})
	if err != nil {
		return nil, err
	}

	previous := order.Status
	order.Status = constants.OrderStatusCancelled
	order.CancelledAt = &now
	if order.PaymentStatus == constants.PaymentStatusPaid {
		order.PaymentStatus = constants.PaymentStatusRefunded
	}
	s.enqueueStatusEmail(order, previous)
	logger.Infow("order_cancelled",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"by_admin", byAdmin,
		"stock_restored", restoreStock,
	)
	return order, nil
}

// MarkDeliveredInput is the delivery confirmation request.
type MarkDeliveredInput struct {
	OrderID       uint
	DeliveryBoyID uint
	Notes         string
	Lat           *float64
	Lng           *float64
}

// MarkDelivered completes an order. Only the assigned delivery boy may
// call it, only for a confirmed order, and only inside the shift's
// delivery window (morning 05:00-11:00 IST, evening 16:00-20:00 IST).
func (s *OrderService) MarkDelivered(input MarkDeliveredInput) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusConfirmed {
		return nil, ErrInvalidTransition
	}
	if order.DeliveryBoyID == nil || *order.DeliveryBoyID != input.DeliveryBoyID {
		return nil, ErrOrderNotAssigned
	}
	if !s.slotSvc.WithinDeliveryWindow(order.DeliveryDate, order.DeliveryShift) {
		return nil, ErrOutsideDeliveryWindow
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"delivered_at":   now,
			"delivery_notes": strings.TrimSpace(input.Notes),
			"updated_at":     now,
		}
		if input.Lat != nil {
			updates["delivery_lat"] = *input.Lat
		}
		if input.Lng != nil {
			updates["delivery_lng"] = *input.Lng
		}
		if err := s.orderRepo.WithTx(tx).UpdateStatus(order.ID, constants.OrderStatusDelivered, updates); err != nil {
			return err
		}
		return s.deliveryBoyRepo.WithTx(tx).IncrementDeliveries(input.DeliveryBoyID)
	})
	if err != nil {
		return nil, err
	}

	order.Status = constants.OrderStatusDelivered
	order.DeliveredAt = &now
	s.enqueueStatusEmail(order, constants.OrderStatusConfirmed)
	logger.Infow("order_delivered",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"delivery_boy_id", input.DeliveryBoyID,
	)
	return order, nil
}

// GetByID returns an order for the back office.
func (s *OrderService) GetByID(id uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetForUser returns an order owned by the given user.
func (s *OrderService) GetForUser(id, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(id, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListForUser returns a user's orders.
func (s *OrderService) ListForUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(filter)
}

// ListAdmin returns orders for the back-office list.
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// WorkQueue returns a delivery boy's route for one date and shift:
// confirmed orders grouped per household in the admin-set sequence.
func (s *OrderService) WorkQueue(deliveryBoyID uint, date time.Time, shift string) ([]models.Order, error) {
	return s.orderRepo.ListWorkQueue(deliveryBoyID, civilDate(date), shift)
}

// UpdateAdminNotes edits the back-office notes. Allowed in any status,
// including terminal ones.
func (s *OrderService) UpdateAdminNotes(orderID uint, notes string) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	return s.orderRepo.UpdateFields(orderID, map[string]interface{}{
		"admin_notes": strings.TrimSpace(notes),
		"updated_at":  time.Now(),
	})
}

// SetPriority flags an order normal or urgent.
func (s *OrderService) SetPriority(orderID uint, priority string) error {
	if priority != constants.PriorityNormal && priority != constants.PriorityUrgent {
		return ErrInvalidTransition
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	return s.orderRepo.UpdateFields(orderID, map[string]interface{}{
		"priority":   priority,
		"updated_at": time.Now(),
	})
}

// SetSequence writes the admin route position of an order inside its
// user's group.
func (s *OrderService) SetSequence(orderID uint, sequence int) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}
	if order == nil {
		return ErrOrderNotFound
	}
	return s.orderRepo.UpdateFields(orderID, map[string]interface{}{
		"sequence_no": sequence,
		"updated_at":  time.Now(),
	})
}

// rederiveProductStatus recomputes a product's status after a stock
// change (auto out_of_stock at zero, back to active on replenishment).
func (s *OrderService) rederiveProductStatus(productRepo *repository.GormProductRepository, productID uint) error {
	product, err := productRepo.GetByID(productID)
	if err != nil || product == nil {
		return err
	}
	next := models.DeriveStatus(product.Status, product.StockQuantity)
	if next == product.Status {
		return nil
	}
	return productRepo.UpdateFields(productID, map[string]interface{}{"status": next})
}

func (s *OrderService) enqueueStatusEmail(order *models.Order, previous string) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
		OrderID:        order.ID,
		PreviousStatus: previous,
		NewStatus:      order.Status,
	}); err != nil {
		logger.Errorw("order_enqueue_status_email_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}

// generateOrderNo builds ORD-<unix-millis>-<4 random digits>. The
// unique index on order_no turns the rare collision into a retryable
// conflict error.
func generateOrderNo() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), randNumeric(4))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		fmt.Fprintf(&b, "%d", n.Int64())
	}
	return b.String()
}

// isUniqueViolation sniffs driver-specific unique constraint errors.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

// mergeCreateOrderItems merges duplicate product lines.
func mergeCreateOrderItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	if len(items) == 0 {
		return nil, nil
	}
	merged := make([]CreateOrderItem, 0, len(items))
	indexMap := make(map[uint]int)
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if idx, ok := indexMap[item.ProductID]; ok {
			merged[idx].Quantity += item.Quantity
			continue
		}
		indexMap[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}
