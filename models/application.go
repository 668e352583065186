package models

import (
	"time"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "PENDING"
	ApplicationStatusAccepted ApplicationStatus = "ACCEPTED"
	ApplicationStatusRejected ApplicationStatus = "REJECTED"
)

// Application is a (job, worker) pair. At most one application may exist per
// pair; on worker selection exactly one becomes ACCEPTED and the rest REJECTED.
type Application struct {
	ID        uint              `json:"id" gorm:"primaryKey"`
	JobID     uint              `json:"job_id" gorm:"not null;uniqueIndex:idx_applications_job_worker"`
	WorkerID  uint              `json:"worker_id" gorm:"not null;uniqueIndex:idx_applications_job_worker"`
	Status    ApplicationStatus `json:"status" gorm:"type:varchar(10);not null;default:'PENDING'"`
	AppliedAt time.Time         `json:"applied_at" gorm:"autoCreateTime"`

	// Relationships
	Job    Job  `json:"job,omitempty" gorm:"foreignKey:JobID"`
	Worker User `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
}

// TableName specifies the table name for the Application model
func (Application) TableName() string {
	return "applications"
}
