package models

import (
	"time"

	"gorm.io/gorm"
)

// UserDeliveryAssignment maps a customer to a delivery boy. At most one
// assignment per user may be active: ActiveKey mirrors UserID while the
// assignment is active and is set to NULL on deactivation, so the
// composite unique index (user_id, active_key) admits any number of
// historical rows but only one live one.
type UserDeliveryAssignment struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	UserID        uint           `gorm:"not null;index;uniqueIndex:uniq_active_assignment" json:"user_id"`
	ActiveKey     *uint          `gorm:"uniqueIndex:uniq_active_assignment" json:"-"`
	DeliveryBoyID uint           `gorm:"not null;index" json:"delivery_boy_id"`
	Shifts        StringArray    `gorm:"type:json" json:"shifts"`
	Areas         StringArray    `gorm:"type:json" json:"areas"`
	Sequence      int            `gorm:"not null;default:0" json:"sequence"` // route position of this user on the boy's run
	Notes         string         `gorm:"type:text" json:"notes"`
	IsActive      bool           `gorm:"not null;index" json:"is_active"`
	AssignedBy    ActorRef       `gorm:"not null" json:"assigned_by"`
	AssignedAt    time.Time      `gorm:"not null" json:"assigned_at"`
	DeactivatedAt *time.Time     `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User        *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DeliveryBoy *DeliveryBoy `gorm:"foreignKey:DeliveryBoyID" json:"delivery_boy,omitempty"`
}

// TableName sets the table name.
func (UserDeliveryAssignment) TableName() string {
	return "user_delivery_assignments"
}
