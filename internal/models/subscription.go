package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription is a recurring delivery plan for one product. Scheduling
// of the generated orders is handled out of band; the entity records the
// plan itself.
type Subscription struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	UserID        uint           `gorm:"index;not null" json:"user_id"`
	ProductID     uint           `gorm:"index;not null" json:"product_id"`
	Quantity      int            `gorm:"not null;default:1" json:"quantity"`
	Frequency     string         `gorm:"not null" json:"frequency"` // daily, alternate_days, weekly
	DeliveryShift string         `gorm:"not null" json:"delivery_shift"`
	StartDate     time.Time      `gorm:"not null" json:"start_date"`
	EndDate       *time.Time     `json:"end_date,omitempty"`
	Status        string         `gorm:"index;not null;default:'active'" json:"status"`
	PausedAt      *time.Time     `json:"paused_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName sets the table name.
func (Subscription) TableName() string {
	return "subscriptions"
}
