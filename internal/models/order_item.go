package models

import "time"

// OrderItem is a frozen line-item snapshot. Name, unit and prices are
// copied from the product at order creation and never re-read, so later
// catalog edits cannot change what the customer agreed to pay.
type OrderItem struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	OrderID    uint      `gorm:"index;not null" json:"order_id"`
	ProductID  uint      `gorm:"index;not null" json:"product_id"`
	Name       string    `gorm:"not null" json:"name"`
	Unit       string    `json:"unit"`
	Image      string    `json:"image"`
	UnitPrice  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	TotalPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (OrderItem) TableName() string {
	return "order_items"
}
