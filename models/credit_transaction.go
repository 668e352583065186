package models

import (
	"time"
)

type TransactionType string

const (
	TransactionJobPosting    TransactionType = "JOB_POSTING"
	TransactionJobCompletion TransactionType = "JOB_COMPLETION"
	TransactionPenalty       TransactionType = "PENALTY"
	TransactionBonus         TransactionType = "BONUS"
	TransactionTopUp         TransactionType = "TOP_UP"
	TransactionPlatformFee   TransactionType = "PLATFORM_FEE"
)

// CreditTransaction is one append-only ledger entry. Amount is signed and
// Balance is the user's balance immediately after this entry was applied, so
// replaying a user's entries in creation order reproduces the final balance.
type CreditTransaction struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	UserID       uint            `json:"user_id" gorm:"not null;index"`
	Type         TransactionType `json:"type" gorm:"type:varchar(20);not null"`
	Amount       int             `json:"amount" gorm:"not null"`
	Balance      int             `json:"balance" gorm:"not null"`
	Description  string          `json:"description" gorm:"size:500"`
	RelatedJobID *uint           `json:"related_job_id" gorm:"index"`
	CreatedAt    time.Time       `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	User User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for the CreditTransaction model
func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
