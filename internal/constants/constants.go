package constants

// Order status values. delivered and cancelled are terminal.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order payment status values (independent axis from order status).
const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusPaid       = "paid"
	PaymentStatusFailed     = "failed"
	PaymentStatusRefunded   = "refunded"
)

// Payment session status values.
const (
	PaymentSessionPending   = "pending"
	PaymentSessionCompleted = "completed"
	PaymentSessionFailed    = "failed"
	PaymentSessionCancelled = "cancelled"
)

// Payment verification status values.
const (
	VerificationPending  = "pending"
	VerificationVerified = "verified"
	VerificationRejected = "rejected"
)

// Payment methods accepted at checkout.
const (
	PaymentMethodCOD    = "cod"
	PaymentMethodCard   = "card"
	PaymentMethodUPI    = "upi"
	PaymentMethodWallet = "wallet"
)

// Delivery shifts. Evening ordering is administratively disabled but the
// shift remains part of the data shape.
const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
)

// Product status values, derived from stock.
const (
	ProductStatusActive     = "active"
	ProductStatusInactive   = "inactive"
	ProductStatusOutOfStock = "out_of_stock"
)

// Order priority values.
const (
	PriorityNormal = "normal"
	PriorityUrgent = "urgent"
)

// Reassignment modes.
const (
	ReassignModeEntire    = "entire"
	ReassignModeDateRange = "date_range"
)

// Subscription frequency and status values.
const (
	SubscriptionDaily     = "daily"
	SubscriptionAlternate = "alternate"
	SubscriptionWeekly    = "weekly"

	SubscriptionStatusActive    = "active"
	SubscriptionStatusPaused    = "paused"
	SubscriptionStatusCancelled = "cancelled"
)

// JWT role discriminators.
const (
	RoleUser     = "user"
	RoleAdmin    = "admin"
	RoleDelivery = "delivery_boy"
)

// User status values.
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// Asynq queue and task names.
const (
	QueueDefault = "default"

	TaskOrderStatusEmail     = "order:status_email"
	TaskPaymentSessionExpire = "payment:session_expire"
)
