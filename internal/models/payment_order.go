package models

import "time"

// PaymentOrder links a payment session to one of the orders it covers.
type PaymentOrder struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	PaymentID uint      `gorm:"index:idx_payment_order,unique;not null" json:"payment_id"`
	OrderID   uint      `gorm:"index:idx_payment_order,unique;not null" json:"order_id"`
	Amount    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the table name.
func (PaymentOrder) TableName() string {
	return "payment_orders"
}
