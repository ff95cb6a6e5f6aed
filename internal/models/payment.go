package models

import (
	"time"

	"gorm.io/gorm"
)

// Payment is a UPI payment session. One session can settle several
// orders at once; the covered orders are linked through PaymentOrder.
// Status tracks the session itself, VerificationStatus the separate
// manual admin review of the customer-submitted transaction ID.
type Payment struct {
	ID                 uint           `gorm:"primarykey" json:"id"`
	PaymentID          string         `gorm:"uniqueIndex;not null" json:"payment_id"`
	ReferenceNo        string         `gorm:"uniqueIndex;not null" json:"reference_no"`
	UserID             uint           `gorm:"index;not null" json:"user_id"`
	TotalAmount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`
	Status             string         `gorm:"index;not null;default:'pending'" json:"status"`
	VerificationStatus string         `gorm:"index;not null;default:'pending'" json:"verification_status"`
	UPILink            string         `gorm:"type:text" json:"upi_link"`
	QRCode             string         `gorm:"type:text" json:"qr_code"` // base64 PNG data URI
	UPITransactionID   string         `json:"upi_transaction_id,omitempty"`
	VerifiedBy         ActorRef       `json:"verified_by,omitempty"`
	VerifiedAt         *time.Time     `json:"verified_at,omitempty"`
	RejectionReason    string         `gorm:"type:text" json:"rejection_reason,omitempty"`
	ExpiresAt          time.Time      `gorm:"index;not null" json:"expires_at"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	Orders []Order `gorm:"many2many:payment_orders;joinForeignKey:PaymentID;joinReferences:OrderID" json:"orders,omitempty"`
}

// TableName sets the table name.
func (Payment) TableName() string {
	return "payments"
}

// Expired reports whether the session has passed its deadline at the
// given instant.
func (p *Payment) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
