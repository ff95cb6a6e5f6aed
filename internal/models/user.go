package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a storefront customer.
type User struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"not null" json:"name"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string         `gorm:"type:varchar(200)" json:"-"`
	Phone         string         `gorm:"index" json:"phone"`
	GoogleID      string         `gorm:"index" json:"-"` // set when the account was created via OAuth
	Status        string         `gorm:"index;not null;default:'active'" json:"status"`
	EmailVerified bool           `gorm:"default:false" json:"email_verified"`
	AddressLine   string         `json:"address_line"`
	Area          string         `gorm:"index" json:"area"`
	City          string         `json:"city"`
	Pincode       string         `json:"pincode"`
	Landmark      string         `json:"landmark"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}
