package services

import (
	"fmt"

	"gorm.io/gorm"

	"clockwork-server/models"
)

// CreditService is the ledger store. Every balance-affecting event goes
// through it and leaves an append-only CreditTransaction whose Balance field
// snapshots the user's balance immediately after the event, so replaying a
// user's history in creation order reproduces the final balance.
type CreditService struct {
	db *gorm.DB
}

// NewCreditService creates a new credit service
func NewCreditService(db *gorm.DB) *CreditService {
	return &CreditService{db: db}
}

// Credit adds amount to the user's balance in its own transaction.
func (s *CreditService) Credit(userID uint, txType models.TransactionType, amount int, description string, relatedJobID *uint) (int, error) {
	var balance int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		balance, txErr = s.CreditTx(tx, userID, txType, amount, description, relatedJobID)
		return txErr
	})
	return balance, err
}

// CreditTx adds amount to the user's balance inside an existing transaction.
func (s *CreditService) CreditTx(tx *gorm.DB, userID uint, txType models.TransactionType, amount int, description string, relatedJobID *uint) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: credit amount must be positive", ErrInvalidInput)
	}

	res := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("credits", gorm.Expr("credits + ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}

	return s.appendEntry(tx, userID, txType, amount, description, relatedJobID)
}

// Debit subtracts amount from the user's balance in its own transaction.
// Fails with ErrInsufficientBalance if the balance would go negative.
func (s *CreditService) Debit(userID uint, txType models.TransactionType, amount int, description string, relatedJobID *uint) (int, error) {
	var balance int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		balance, txErr = s.DebitTx(tx, userID, txType, amount, description, relatedJobID)
		return txErr
	})
	return balance, err
}

// DebitTx subtracts amount inside an existing transaction. The non-negative
// balance invariant is enforced here, centrally, with a guarded update rather
// than at call sites.
func (s *CreditService) DebitTx(tx *gorm.DB, userID uint, txType models.TransactionType, amount int, description string, relatedJobID *uint) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: debit amount must be positive", ErrInvalidInput)
	}

	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return 0, err
	}

	res := tx.Model(&models.User{}).
		Where("id = ? AND credits >= ?", userID, amount).
		Update("credits", gorm.Expr("credits - ?", amount))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, fmt.Errorf("%w: balance %d, debit %d", ErrInsufficientBalance, user.Credits, amount)
	}

	return s.appendEntry(tx, userID, txType, -amount, description, relatedJobID)
}

// DebitAtMostTx debits up to amount, clamping at the current balance. Used by
// the penalty path so a broke account still gets penalized without the whole
// report failing. Returns the amount actually applied and the new balance.
func (s *CreditService) DebitAtMostTx(tx *gorm.DB, userID uint, txType models.TransactionType, amount int, description string, relatedJobID *uint) (int, int, error) {
	if amount <= 0 {
		return 0, 0, fmt.Errorf("%w: debit amount must be positive", ErrInvalidInput)
	}

	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, 0, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return 0, 0, err
	}

	applied := amount
	if user.Credits < amount {
		applied = user.Credits
	}
	if applied == 0 {
		// Nothing to take; still record a zero-amount entry so the penalty is
		// visible in the ledger history.
		balance, err := s.appendEntry(tx, userID, txType, 0, description, relatedJobID)
		return 0, balance, err
	}

	res := tx.Model(&models.User{}).
		Where("id = ? AND credits >= ?", userID, applied).
		Update("credits", gorm.Expr("credits - ?", applied))
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, 0, fmt.Errorf("%w: concurrent balance change for user %d", ErrPreconditionFailed, userID)
	}

	balance, err := s.appendEntry(tx, userID, txType, -applied, description, relatedJobID)
	return applied, balance, err
}

// appendEntry re-reads the post-update balance inside the transaction and
// appends the ledger entry with that snapshot.
func (s *CreditService) appendEntry(tx *gorm.DB, userID uint, txType models.TransactionType, signedAmount int, description string, relatedJobID *uint) (int, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		return 0, err
	}

	entry := models.CreditTransaction{
		UserID:       userID,
		Type:         txType,
		Amount:       signedAmount,
		Balance:      user.Credits,
		Description:  description,
		RelatedJobID: relatedJobID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, err
	}
	return user.Credits, nil
}

// TopUp adds purchased credits to the user's balance.
func (s *CreditService) TopUp(userID uint, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: top-up amount must be positive", ErrInvalidInput)
	}
	return s.Credit(userID, models.TransactionTopUp, amount, fmt.Sprintf("Credit top-up: %d", amount), nil)
}

// Balance returns the user's current credit balance.
func (s *CreditService) Balance(userID uint) (int, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return 0, err
	}
	return user.Credits, nil
}

// History returns the user's ledger entries, most recent first.
func (s *CreditService) History(userID uint, limit int) ([]models.CreditTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []models.CreditTransaction
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
