package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock status labels derived from quantity vs. reorder level.
const (
	StatusInStock    = "In Stock"
	StatusLowStock   = "Low Stock"
	StatusOutOfStock = "Out of Stock"
)

// expiryWindow is how far ahead a perishable product counts as expiring soon.
const expiryWindow = 7 * 24 * time.Hour

// Product is the inventory master record. QuantityInStock is denormalized
// state backed by the StockMovement ledger; outside of initial creation it
// must only change through the stock service.
type Product struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	Name            string          `json:"name" gorm:"type:varchar(200);index;not null"`
	SKU             string          `json:"sku" gorm:"type:varchar(50);uniqueIndex;not null"`
	CategoryID      *uint           `json:"category_id,omitempty" gorm:"index"`
	Category        *Category       `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Suppliers       []Supplier      `json:"suppliers,omitempty" gorm:"many2many:product_suppliers"`
	Description     string          `json:"description" gorm:"type:text"`
	UnitPrice       decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2);not null"`
	QuantityInStock int             `json:"quantity_in_stock" gorm:"default:0;not null"`
	ReorderLevel    int             `json:"reorder_level" gorm:"default:10;not null"`
	IsPerishable    bool            `json:"is_perishable" gorm:"default:false"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty" gorm:"type:date"`
	CreatedByID     *uint           `json:"created_by_id,omitempty" gorm:"index"`
	CreatedBy       *User           `json:"created_by,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

// IsLowStock reports whether the quantity is at or below the reorder level.
func (p *Product) IsLowStock() bool {
	return p.QuantityInStock <= p.ReorderLevel
}

// StockStatus returns the display status for the current quantity.
func (p *Product) StockStatus() string {
	if p.QuantityInStock == 0 {
		return StatusOutOfStock
	}
	if p.IsLowStock() {
		return StatusLowStock
	}
	return StatusInStock
}

// IsExpiringSoon reports whether a perishable product expires within 7 days
// (inclusive) of now. Products without an expiry date are never expiring.
func (p *Product) IsExpiringSoon(now time.Time) bool {
	if !p.IsPerishable || p.ExpiryDate == nil {
		return false
	}
	return !p.ExpiryDate.After(now.Add(expiryWindow))
}

// CategoryName returns the category name or "" when uncategorized.
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// TotalValue returns unit price times quantity in stock.
func (p *Product) TotalValue() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.QuantityInStock)))
}
