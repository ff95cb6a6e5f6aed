package queue

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/dairydrop/internal/constants"
)

const (
	// TaskOrderStatusEmail notifies the customer of a status change.
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskPaymentSessionExpire sweeps an overdue payment session.
	TaskPaymentSessionExpire = constants.TaskPaymentSessionExpire
)

// OrderStatusEmailPayload is the status-change mail task payload.
type OrderStatusEmailPayload struct {
	OrderID        uint   `json:"order_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
}

// PaymentSessionExpirePayload is the session expiry task payload.
type PaymentSessionExpirePayload struct {
	PaymentID uint `json:"payment_id"`
}

// NewOrderStatusEmailTask builds the status-change mail task.
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusEmail, body), nil
}

// NewPaymentSessionExpireTask builds the session expiry task.
func NewPaymentSessionExpireTask(payload PaymentSessionExpirePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentSessionExpire, body), nil
}
