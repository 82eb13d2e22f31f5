package model

import (
	"time"

	"gorm.io/gorm"
)

// Category groups products. Categories may be created explicitly or
// implicitly by the CSV importer when an unseen name is referenced; the name
// carries a unique index so concurrent importers cannot duplicate one.
type Category struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
