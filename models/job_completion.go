package models

import (
	"time"
)

// JobCompletion is the worker's completion submission for a job. It is mutated
// exactly once, by the poster's verify action.
type JobCompletion struct {
	ID               uint       `json:"id" gorm:"primaryKey"`
	JobID            uint       `json:"job_id" gorm:"not null;index"`
	WorkerID         uint       `json:"worker_id" gorm:"not null;index"`
	SubmittedAt      time.Time  `json:"submitted_at" gorm:"autoCreateTime"`
	ProofImages      string     `json:"proof_images" gorm:"type:text"` // comma-separated URLs
	ProofDescription string     `json:"proof_description" gorm:"type:text"`
	UserVerified     bool       `json:"user_verified" gorm:"default:false"`
	UserVerifiedAt   *time.Time `json:"user_verified_at"`
	Rating           *int       `json:"rating"` // 1-5, set at verification

	// Relationships
	Job    Job  `json:"job,omitempty" gorm:"foreignKey:JobID"`
	Worker User `json:"worker,omitempty" gorm:"foreignKey:WorkerID"`
}

// TableName specifies the table name for the JobCompletion model
func (JobCompletion) TableName() string {
	return "job_completions"
}
