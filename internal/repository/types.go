package repository

import "time"

// ProductListFilter filters catalog listings.
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   uint
	Search       string
	Status       string
	OnlyActive   bool
	WithCategory bool
}

// OrderListFilter filters order listings.
type OrderListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	DeliveryBoyID uint
	Status        string
	PaymentStatus string
	Shift         string
	OrderNo       string
	DeliveryDate  *time.Time
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// UserListFilter filters customer listings.
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Area        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// DeliveryBoyListFilter filters delivery staff listings.
type DeliveryBoyListFilter struct {
	Page       int
	PageSize   int
	Keyword    string
	Area       string
	Shift      string
	OnlyActive bool
}

// PaymentListFilter filters payment session listings.
type PaymentListFilter struct {
	Page               int
	PageSize           int
	UserID             uint
	Status             string
	VerificationStatus string
	ReferenceNo        string
	CreatedFrom        *time.Time
	CreatedTo          *time.Time
}

// AssignmentListFilter filters user-to-delivery-boy assignment listings.
type AssignmentListFilter struct {
	Page          int
	PageSize      int
	UserID        uint
	DeliveryBoyID uint
	OnlyActive    bool
}

// SubscriptionListFilter filters subscription listings.
type SubscriptionListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Status   string
}
