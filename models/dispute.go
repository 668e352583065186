package models

import (
	"time"
)

type DisputeType string

const (
	DisputeWorkNotDone DisputeType = "WORK_NOT_DONE"
	DisputePoorWork    DisputeType = "POOR_WORK"
	DisputeNoShow      DisputeType = "NO_SHOW"
	DisputeOther       DisputeType = "OTHER"
)

type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "OPEN"
	DisputeStatusResolved DisputeStatus = "RESOLVED"
	DisputeStatusRejected DisputeStatus = "REJECTED"
)

type Dispute struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	JobID         uint          `json:"job_id" gorm:"not null;index"`
	RaisedBy      uint          `json:"raised_by" gorm:"not null;index"`
	RaisedAgainst uint          `json:"raised_against" gorm:"not null;index"`
	Type          DisputeType   `json:"type" gorm:"type:varchar(20);not null"`
	Description   string        `json:"description" gorm:"type:text;not null"`
	Status        DisputeStatus `json:"status" gorm:"type:varchar(10);not null;default:'OPEN'"`
	CreatedAt     time.Time     `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	Job        Job  `json:"job,omitempty" gorm:"foreignKey:JobID"`
	Raiser     User `json:"raiser,omitempty" gorm:"foreignKey:RaisedBy"`
	Respondent User `json:"respondent,omitempty" gorm:"foreignKey:RaisedAgainst"`
}

// TableName specifies the table name for the Dispute model
func (Dispute) TableName() string {
	return "disputes"
}

// IsValidDisputeType checks if the dispute type is known
func IsValidDisputeType(t DisputeType) bool {
	switch t {
	case DisputeWorkNotDone, DisputePoorWork, DisputeNoShow, DisputeOther:
		return true
	default:
		return false
	}
}
