package models

import (
	"time"

	"gorm.io/gorm"
)

type AvailabilityStatus string

const (
	AvailabilityAvailable AvailabilityStatus = "AVAILABLE"
	AvailabilityBusy      AvailabilityStatus = "BUSY"
)

// WorkerProfile holds the professional profile and lifetime counters for a
// worker. Created lazily when a user switches to the WORKER role.
type WorkerProfile struct {
	ID                 uint               `json:"id" gorm:"primaryKey"`
	WorkerID           uint               `json:"worker_id" gorm:"uniqueIndex;not null"`
	Skills             string             `json:"skills" gorm:"type:text"` // comma-separated
	AvailabilityStatus AvailabilityStatus `json:"availability_status" gorm:"type:varchar(10);not null;default:'AVAILABLE'"`
	TotalJobsCompleted int                `json:"total_jobs_completed" gorm:"not null;default:0"`
	TotalEarnings      int                `json:"total_earnings" gorm:"not null;default:0"`
	Rating             float64            `json:"rating" gorm:"type:decimal(3,2);default:5"`
	ProfilePhoto       *string            `json:"profile_photo,omitempty"`
	CreatedAt          time.Time          `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt          time.Time          `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt          gorm.DeletedAt     `json:"deleted_at,omitempty" gorm:"index"`

	// Relationships
	Worker User `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
}

// TableName specifies the table name for the WorkerProfile model
func (WorkerProfile) TableName() string {
	return "worker_profiles"
}

// WorkerProfileRequest represents the request structure for updating a worker profile
type WorkerProfileRequest struct {
	Skills             string             `json:"skills"`
	AvailabilityStatus AvailabilityStatus `json:"availability_status"`
}
