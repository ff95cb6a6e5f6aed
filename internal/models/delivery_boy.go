package models

import (
	"time"

	"gorm.io/gorm"
)

// DeliveryBoy is a delivery person managed by the admin back-office.
type DeliveryBoy struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	Name            string         `gorm:"not null" json:"name"`
	Phone           string         `gorm:"uniqueIndex;not null" json:"phone"`
	Email           string         `gorm:"index" json:"email"`
	PasswordHash    string         `gorm:"type:varchar(200)" json:"-"`
	Areas           StringArray    `gorm:"type:json" json:"areas"`
	Shifts          StringArray    `gorm:"type:json" json:"shifts"`
	// No column default: gorm skips zero-valued fields that carry one,
	// which would silently persist inactive staff as active.
	IsActive        bool           `gorm:"index" json:"is_active"`
	TotalDeliveries int64          `gorm:"not null;default:0" json:"total_deliveries"`
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (DeliveryBoy) TableName() string {
	return "delivery_boys"
}
