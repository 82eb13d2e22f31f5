package model

import "time"

// Stock movement types. An adjustment sets the quantity absolutely instead of
// applying a delta.
const (
	MovementIn         = "in"
	MovementOut        = "out"
	MovementAdjustment = "adjustment"
)

// StockMovement is one entry of the append-only stock ledger. Entries are
// never updated or deleted once written; deleting a product cascades to its
// movements.
type StockMovement struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ProductID     uint      `json:"product_id" gorm:"index;not null"`
	Product       *Product  `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	MovementType  string    `json:"movement_type" gorm:"type:varchar(20);not null"`
	Quantity      int       `json:"quantity" gorm:"not null"`
	Reason        string    `json:"reason" gorm:"type:text;not null"`
	PerformedByID *uint     `json:"performed_by_id,omitempty" gorm:"index"`
	PerformedBy   *User     `json:"performed_by,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	CreatedAt     time.Time `json:"created_at"`
}
