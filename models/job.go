package models

import (
	"time"
)

type JobStatus string

const (
	JobStatusPosted              JobStatus = "POSTED"
	JobStatusApplied             JobStatus = "APPLIED"
	JobStatusSelected            JobStatus = "SELECTED"
	JobStatusInProgress          JobStatus = "IN_PROGRESS"
	JobStatusPendingVerification JobStatus = "PENDING_VERIFICATION"
	JobStatusCompleted           JobStatus = "COMPLETED"
	JobStatusCancelled           JobStatus = "CANCELLED"
	JobStatusDisputed            JobStatus = "DISPUTED"
)

// jobTransitions is the closed transition table for the job state machine.
// A status missing from the map is terminal.
var jobTransitions = map[JobStatus][]JobStatus{
	JobStatusPosted:              {JobStatusApplied, JobStatusCancelled, JobStatusDisputed},
	JobStatusApplied:             {JobStatusSelected, JobStatusDisputed},
	JobStatusSelected:            {JobStatusInProgress, JobStatusDisputed},
	JobStatusInProgress:          {JobStatusPendingVerification, JobStatusDisputed},
	JobStatusPendingVerification: {JobStatusCompleted, JobStatusDisputed},
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range jobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s JobStatus) IsTerminal() bool {
	return len(jobTransitions[s]) == 0
}

type Job struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"size:255;not null"`
	Category    string `json:"category" gorm:"size:100;not null;index"`
	Description string `json:"description" gorm:"type:text"`

	// PaymentAmount is the gross amount set by the poster. PlatformFee and
	// WorkerPayment are computed once at creation and never change:
	// WorkerPayment = PaymentAmount - PlatformFee.
	PaymentAmount int `json:"payment_amount" gorm:"not null"`
	PlatformFee   int `json:"platform_fee" gorm:"not null;default:0"`
	WorkerPayment int `json:"worker_payment" gorm:"not null;default:0"`

	Images string `json:"images" gorm:"type:text"` // comma-separated URLs

	Status     JobStatus `json:"status" gorm:"type:varchar(25);not null;default:'POSTED';index"`
	PostedBy   uint      `json:"posted_by" gorm:"not null;index"`
	AssignedTo *uint     `json:"assigned_to" gorm:"index"` // null until a worker is selected

	LocationLat     float64 `json:"location_lat" gorm:"type:decimal(10,8)"`
	LocationLng     float64 `json:"location_lng" gorm:"type:decimal(11,8)"`
	LocationAddress string  `json:"location_address" gorm:"size:500"`

	CreatedAt   time.Time  `json:"created_at" gorm:"autoCreateTime"`
	StartedAt   *time.Time `json:"started_at"` // set when a worker is selected, not at start-work
	CompletedAt *time.Time `json:"completed_at"`

	// Relationships
	Poster User  `json:"poster,omitempty" gorm:"foreignKey:PostedBy"`
	Worker *User `json:"worker,omitempty" gorm:"foreignKey:AssignedTo"`
}

// TableName specifies the table name for the Job model
func (Job) TableName() string {
	return "jobs"
}

// IsParty reports whether userID is the poster or the assigned worker.
func (j *Job) IsParty(userID uint) bool {
	if j.PostedBy == userID {
		return true
	}
	return j.AssignedTo != nil && *j.AssignedTo == userID
}

// Counterparty returns the other party on the job relative to userID.
// Returns 0 if userID is not a party or there is no counterparty yet.
func (j *Job) Counterparty(userID uint) uint {
	if j.PostedBy == userID {
		if j.AssignedTo != nil {
			return *j.AssignedTo
		}
		return 0
	}
	if j.AssignedTo != nil && *j.AssignedTo == userID {
		return j.PostedBy
	}
	return 0
}
