package model

import (
	"time"

	"gorm.io/gorm"
)

// User account types
const (
	UserTypeAdmin    = "admin"
	UserTypeEmployee = "employee"
)

// User represents an application account. Password holds the bcrypt hash and
// is never serialized.
type User struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Username    string         `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	Email       string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password    string         `json:"-" gorm:"type:varchar(255);not null"`
	FirstName   string         `json:"first_name" gorm:"type:varchar(50)"`
	LastName    string         `json:"last_name" gorm:"type:varchar(50)"`
	PhoneNumber string         `json:"phone_number" gorm:"type:varchar(15)"`
	UserType    string         `json:"user_type" gorm:"type:varchar(10);default:'employee';not null"`
	IsStaff     bool           `json:"is_staff" gorm:"default:false"`
	IsSuperuser bool           `json:"is_superuser" gorm:"default:false"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
