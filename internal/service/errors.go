package service

import "errors"

// Sentinel errors shared across services. Handlers map these to HTTP
// codes and messages.
var (
	// auth
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrWeakPassword       = errors.New("password does not meet policy")
	ErrCaptchaInvalid     = errors.New("captcha invalid")

	// catalog
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrSlugTaken        = errors.New("slug already in use")
	ErrProductInactive  = errors.New("product not available")

	// cart
	ErrCartEmpty        = errors.New("cart is empty")
	ErrCartItemNotFound = errors.New("cart item not found")

	// slot
	ErrInvalidShift       = errors.New("invalid delivery shift")
	ErrEveningUnavailable = errors.New("evening delivery is not available yet")
	ErrSameDayDelivery    = errors.New("same-day delivery is not available")
	ErrSlotOutOfRange     = errors.New("delivery date must be within the next 7 days")
	ErrSlotCutoffPassed   = errors.New("booking for tomorrow morning has closed")

	// order
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderNoConflict       = errors.New("order number conflict, retry")
	ErrEmptyOrder            = errors.New("order has no items")
	ErrInvalidQuantity       = errors.New("invalid quantity")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrAddressIncomplete     = errors.New("shipping address incomplete")
	ErrInvalidTransition     = errors.New("invalid order status transition")
	ErrOrderNotCancellable   = errors.New("order can no longer be cancelled")
	ErrCancelWindowClosed    = errors.New("cancellation window for this shift has closed")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrOrderNotAssigned      = errors.New("order is not assigned to you")
	ErrOutsideDeliveryWindow = errors.New("outside the delivery window for this shift")

	// assignment
	ErrDeliveryBoyNotFound  = errors.New("delivery boy not found")
	ErrDeliveryBoyInactive  = errors.New("delivery boy is inactive")
	ErrUserNotFound         = errors.New("user not found")
	ErrAssignmentNotFound   = errors.New("assignment not found")
	ErrAssignmentExists     = errors.New("user already has an active assignment")
	ErrSameDeliveryBoy      = errors.New("source and target delivery boy are the same")
	ErrInvalidReassignMode  = errors.New("invalid reassignment mode")
	ErrInvalidDateRange     = errors.New("invalid date range")

	// payment
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentExpired       = errors.New("payment session expired")
	ErrPaymentNotPending    = errors.New("payment session is not pending")
	ErrPaymentNotVerifiable = errors.New("payment is not awaiting verification")
	ErrNoPayableOrders      = errors.New("no payable orders for this session")
	ErrMissingTransactionID = errors.New("transaction id required")
	ErrUPINotConfigured     = errors.New("upi payee is not configured")

	// subscription
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrInvalidFrequency     = errors.New("invalid subscription frequency")
)
