package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser   UserRole = "USER"
	RoleWorker UserRole = "WORKER"
)

type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255"`
	PhoneNumber string    `json:"phone_number" gorm:"size:20;uniqueIndex;not null"`
	Address     string    `json:"address" gorm:"size:500"`
	Role        UserRole  `json:"role" gorm:"type:varchar(10);not null;default:'USER';check:role IN ('USER','WORKER')"`
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	Credits     int       `json:"credits" gorm:"not null;default:0"`
	CreditScore int       `json:"credit_score" gorm:"not null;default:100"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate is a GORM hook that runs before creating a user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

// IsValidRole checks if the user role is valid
func (u *User) IsValidRole() bool {
	switch u.Role {
	case RoleUser, RoleWorker:
		return true
	default:
		return false
	}
}

// IsWorker checks if the user is a worker
func (u *User) IsWorker() bool {
	return u.Role == RoleWorker
}

// IsUser checks if the user is a job poster
func (u *User) IsUser() bool {
	return u.Role == RoleUser
}
