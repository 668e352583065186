package models

import (
	"time"
)

type AccessLevel string

const (
	AccessPremium    AccessLevel = "PREMIUM"
	AccessTrusted    AccessLevel = "TRUSTED"
	AccessStandard   AccessLevel = "STANDARD"
	AccessRestricted AccessLevel = "RESTRICTED"
	AccessSuspended  AccessLevel = "SUSPENDED"
)

// TrustRecord is the per-worker reliability record. Workers start fully
// trusted (score 100) and every violation reduces trust; good behavior can
// restore it, but never above the maximum.
type TrustRecord struct {
	ID                     uint        `json:"id" gorm:"primaryKey"`
	WorkerID               uint        `json:"worker_id" gorm:"uniqueIndex;not null"`
	Score                  int         `json:"score" gorm:"not null;default:100"`
	Strikes                int         `json:"strikes" gorm:"not null;default:0"`
	AccessLevel            AccessLevel `json:"access_level" gorm:"type:varchar(15);not null;default:'PREMIUM';index"`
	IsTemporarilySuspended bool        `json:"is_temporarily_suspended" gorm:"default:false"`
	IsPermanentlyBanned    bool        `json:"is_permanently_banned" gorm:"default:false"`
	SuspensionExpiresAt    *time.Time  `json:"suspension_expires_at"`
	LastBonusAt            *time.Time  `json:"last_bonus_at"`
	TotalViolations        int         `json:"total_violations" gorm:"not null;default:0"`
	CreatedAt              time.Time   `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt              time.Time   `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Worker     User             `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
	Violations []TrustViolation `json:"violations,omitempty" gorm:"foreignKey:TrustRecordID"`
	Recoveries []TrustRecovery  `json:"recoveries,omitempty" gorm:"foreignKey:TrustRecordID"`
}

// TableName specifies the table name for the TrustRecord model
func (TrustRecord) TableName() string {
	return "trust_records"
}

// TrustViolation is one append-only violation history entry.
type TrustViolation struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	TrustRecordID  uint      `json:"trust_record_id" gorm:"not null;index"`
	Type           string    `json:"type" gorm:"size:30;not null"`
	PointsDeducted int       `json:"points_deducted" gorm:"not null"`
	StrikesAdded   int       `json:"strikes_added" gorm:"not null"`
	JobID          *uint     `json:"job_id"`
	Description    string    `json:"description" gorm:"size:500"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the TrustViolation model
func (TrustViolation) TableName() string {
	return "trust_violations"
}

// TrustRecovery is one append-only recovery history entry.
type TrustRecovery struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	TrustRecordID uint      `json:"trust_record_id" gorm:"not null;index"`
	PointsAdded   int       `json:"points_added" gorm:"not null"`
	Reason        string    `json:"reason" gorm:"size:255"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for the TrustRecovery model
func (TrustRecovery) TableName() string {
	return "trust_recoveries"
}
