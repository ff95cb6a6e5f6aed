package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
)

// Order is one customer order. Monetary fields are snapshots: TotalAmount
// is recomputed from its components on every service-level persist, and
// line-item prices are frozen at creation time.
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`
	UserID         uint           `gorm:"index;not null" json:"user_id"`
	Status         string         `gorm:"index;not null" json:"status"`
	PaymentStatus  string         `gorm:"index;not null" json:"payment_status"`
	PaymentMethod  string         `gorm:"not null" json:"payment_method"`
	Subtotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`
	ShippingFee    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_fee"`
	Tax            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax"`
	Discount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount"`
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	ShippingAddr   JSON           `gorm:"type:json;not null" json:"shipping_address"`
	DeliveryShift  string         `gorm:"index;not null" json:"delivery_shift"`
	DeliveryDate   time.Time      `gorm:"index;not null" json:"delivery_date"`
	CustomerNotes  string         `gorm:"type:text" json:"customer_notes"`
	AdminNotes     string         `gorm:"type:text" json:"admin_notes"`
	Priority       string         `gorm:"not null;default:'normal'" json:"priority"`
	DeliveryBoyID  *uint          `gorm:"index" json:"delivery_boy_id,omitempty"`
	SequenceNo     *int           `json:"sequence_no,omitempty"` // admin-assigned route position within the user's group
	DeliveredAt    *time.Time     `gorm:"index" json:"delivered_at,omitempty"`
	DeliveryNotes  string         `gorm:"type:text" json:"delivery_notes,omitempty"`
	DeliveryLat    *float64       `json:"delivery_lat,omitempty"`
	DeliveryLng    *float64       `json:"delivery_lng,omitempty"`
	CancelledAt    *time.Time     `gorm:"index" json:"cancelled_at,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Items       []OrderItem  `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	DeliveryBoy *DeliveryBoy `gorm:"foreignKey:DeliveryBoyID" json:"delivery_boy,omitempty"`
}

// TableName sets the table name.
func (Order) TableName() string {
	return "orders"
}

// IsTerminal reports whether the order is in a terminal status.
func (o *Order) IsTerminal() bool {
	return o.Status == constants.OrderStatusDelivered || o.Status == constants.OrderStatusCancelled
}

// IsOpen reports whether the order is still in flight (pending or
// confirmed) and therefore subject to assignment cascades.
func (o *Order) IsOpen() bool {
	return o.Status == constants.OrderStatusPending || o.Status == constants.OrderStatusConfirmed
}
