package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/dairydrop/internal/constants"
)

// Product is a sellable dairy item. StockQuantity is the single shared
// mutable resource across concurrent order confirmations; it is only ever
// changed through conditional updates that keep it non-negative.
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	CategoryID    uint           `gorm:"not null;index" json:"category_id"`
	Name          string         `gorm:"not null" json:"name"`
	Slug          string         `gorm:"uniqueIndex;not null" json:"slug"`
	Description   string         `gorm:"type:text" json:"description"`
	Unit          string         `gorm:"not null" json:"unit"` // e.g. "500ml", "1L", "250g"
	Price         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	DiscountPrice *Money         `gorm:"type:decimal(20,2)" json:"discount_price,omitempty"`
	StockQuantity int            `gorm:"not null;default:0" json:"stock_quantity"`
	Status        string         `gorm:"index;not null;default:'active'" json:"status"`
	Images        StringArray    `gorm:"type:json" json:"images"`
	SortOrder     int            `gorm:"default:0;index" json:"sort_order"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// TableName sets the table name.
func (Product) TableName() string {
	return "products"
}

// EffectivePrice returns the discount price when set, the list price
// otherwise.
func (p *Product) EffectivePrice() Money {
	if p.DiscountPrice != nil && p.DiscountPrice.Decimal.GreaterThan(decimal.Zero) {
		return *p.DiscountPrice
	}
	return p.Price
}

// DeriveStatus computes the status the product should carry for its
// current stock. Inactive products stay inactive regardless of stock.
func DeriveStatus(current string, stock int) string {
	if current == constants.ProductStatusInactive {
		return constants.ProductStatusInactive
	}
	if stock <= 0 {
		return constants.ProductStatusOutOfStock
	}
	return constants.ProductStatusActive
}

// Orderable reports whether the product can be placed in a new order for
// the requested quantity.
func (p *Product) Orderable(quantity int) bool {
	if p == nil || quantity <= 0 {
		return false
	}
	if p.Status == constants.ProductStatusInactive {
		return false
	}
	return p.StockQuantity >= quantity
}
