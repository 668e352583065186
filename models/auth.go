package models

import (
	"time"
)

// OTPCode stores a bcrypt hash of a one-time code sent to a phone number.
// The plain code is never persisted.
type OTPCode struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	PhoneNumber string    `json:"phone_number" gorm:"size:20;not null;index"`
	CodeHash    string    `json:"-" gorm:"size:255;not null"`
	ExpiresAt   time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the OTPCode model
func (OTPCode) TableName() string {
	return "otp_codes"
}

// IsExpired reports whether the code can no longer be redeemed.
func (o *OTPCode) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}

// AuthSession records an issued JWT so sessions can be listed and revoked.
type AuthSession struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Token     string    `json:"-" gorm:"size:500;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Relations
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the AuthSession model
func (AuthSession) TableName() string {
	return "auth_sessions"
}
