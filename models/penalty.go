package models

import (
	"time"
)

type PenaltyType string

const (
	PenaltyFalseWorkReport PenaltyType = "FALSE_WORK_REPORT"
	PenaltyNoShow          PenaltyType = "NO_SHOW"
	PenaltyPoorWork        PenaltyType = "POOR_WORK"
	PenaltyFalseDispute    PenaltyType = "FALSE_DISPUTE"
)

type PenaltyStatus string

const (
	PenaltyStatusPending   PenaltyStatus = "PENDING"
	PenaltyStatusResolved  PenaltyStatus = "RESOLVED"
	PenaltyStatusDismissed PenaltyStatus = "DISMISSED"
)

// Penalty records a counterparty's violation report. Resolution beyond the
// initial PENDING record is a manual back-office process.
type Penalty struct {
	ID           uint          `json:"id" gorm:"primaryKey"`
	UserID       uint          `json:"user_id" gorm:"not null;index"`
	Type         PenaltyType   `json:"type" gorm:"type:varchar(20);not null"`
	Amount       int           `json:"amount" gorm:"not null"`
	Description  string        `json:"description" gorm:"size:500"`
	ReportedBy   uint          `json:"reported_by" gorm:"not null"`
	RelatedJobID *uint         `json:"related_job_id" gorm:"index"`
	Status       PenaltyStatus `json:"status" gorm:"type:varchar(10);not null;default:'PENDING'"`
	CreatedAt    time.Time     `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	User     User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Reporter User `json:"reporter,omitempty" gorm:"foreignKey:ReportedBy"`
}

// TableName specifies the table name for the Penalty model
func (Penalty) TableName() string {
	return "penalties"
}

// IsValidPenaltyType checks if the reported violation type is known
func IsValidPenaltyType(t PenaltyType) bool {
	switch t {
	case PenaltyFalseWorkReport, PenaltyNoShow, PenaltyPoorWork, PenaltyFalseDispute:
		return true
	default:
		return false
	}
}
