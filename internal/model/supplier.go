package model

import (
	"time"

	"gorm.io/gorm"
)

// Supplier represents a product vendor. The importer creates suppliers on the
// fly with placeholder contact details when a row references an unknown name.
type Supplier struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(200);index;not null"`
	Email       string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PhoneNumber string         `json:"phone_number" gorm:"type:varchar(20)"`
	Website     string         `json:"website" gorm:"type:varchar(200)"`
	Address     string         `json:"address" gorm:"type:text"`
	City        string         `json:"city" gorm:"type:varchar(100)"`
	Country     string         `json:"country" gorm:"type:varchar(100)"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
