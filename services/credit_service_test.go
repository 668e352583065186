package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clockwork-server/models"
)

func TestCreditAndDebit(t *testing.T) {
	db := newTestDB(t)
	credits := NewCreditService(db)
	user := createUser(t, db, models.RoleUser, 0)

	balance, err := credits.Credit(user.ID, models.TransactionBonus, 100, "Welcome bonus", nil)
	require.NoError(t, err)
	assert.Equal(t, 100, balance)

	balance, err = credits.Debit(user.ID, models.TransactionPenalty, 30, "Penalty", nil)
	require.NoError(t, err)
	assert.Equal(t, 70, balance)

	history, err := credits.History(user.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	// Most recent first.
	assert.Equal(t, -30, history[0].Amount)
	assert.Equal(t, 70, history[0].Balance)
	assert.Equal(t, 100, history[1].Amount)
	assert.Equal(t, 100, history[1].Balance)
}

func TestDebitInsufficientBalance(t *testing.T) {
	db := newTestDB(t)
	credits := NewCreditService(db)
	user := createUser(t, db, models.RoleUser, 10)

	_, err := credits.Debit(user.ID, models.TransactionPenalty, 25, "Penalty", nil)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// Balance and ledger untouched.
	balance, err := credits.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	history, err := credits.History(user.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDebitAtMostClampsAtBalance(t *testing.T) {
	db := newTestDB(t)
	credits := NewCreditService(db)
	user := createUser(t, db, models.RoleWorker, 10)

	var applied, balance int
	err := db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		applied, balance, txErr = credits.DebitAtMostTx(tx, user.ID, models.TransactionPenalty, 25, "Penalty", nil)
		return txErr
	})
	require.NoError(t, err)
	assert.Equal(t, 10, applied)
	assert.Equal(t, 0, balance)

	// A second penalty against a broke account still leaves a ledger trace.
	err = db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		applied, balance, txErr = credits.DebitAtMostTx(tx, user.ID, models.TransactionPenalty, 25, "Penalty", nil)
		return txErr
	})
	require.NoError(t, err)
	assert.Equal(t, 0, applied)
	assert.Equal(t, 0, balance)

	history, err := credits.History(user.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 0, history[0].Amount)
	assert.Equal(t, 0, history[0].Balance)
}

func TestInvalidAmounts(t *testing.T) {
	db := newTestDB(t)
	credits := NewCreditService(db)
	user := createUser(t, db, models.RoleUser, 50)

	_, err := credits.Credit(user.ID, models.TransactionBonus, 0, "Nothing", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = credits.Debit(user.ID, models.TransactionPenalty, -5, "Nothing", nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = credits.TopUp(user.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUnknownUser(t *testing.T) {
	db := newTestDB(t)
	credits := NewCreditService(db)

	_, err := credits.Credit(9999, models.TransactionBonus, 10, "Bonus", nil)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = credits.Balance(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

// The replay invariant: walking a user's ledger oldest-first, each entry's
// balance snapshot equals the running sum, and the last snapshot equals the
// live balance.
func TestLedgerReplay(t *testing.T) {
	db := newTestDB(t)
	credits := NewCreditService(db)
	user := createUser(t, db, models.RoleWorker, 0)

	_, err := credits.Credit(user.ID, models.TransactionBonus, 100, "Welcome bonus", nil)
	require.NoError(t, err)
	_, err = credits.Credit(user.ID, models.TransactionJobCompletion, 45, "Job payment", nil)
	require.NoError(t, err)
	_, err = credits.Debit(user.ID, models.TransactionPenalty, 25, "Penalty", nil)
	require.NoError(t, err)
	_, err = credits.TopUp(user.ID, 30)
	require.NoError(t, err)

	var entries []models.CreditTransaction
	require.NoError(t, db.Where("user_id = ?", user.ID).
		Order("created_at ASC, id ASC").Find(&entries).Error)
	require.Len(t, entries, 4)

	running := 0
	for _, entry := range entries {
		running += entry.Amount
		assert.Equal(t, running, entry.Balance)
	}

	balance, err := credits.Balance(user.ID)
	require.NoError(t, err)
	assert.Equal(t, running, balance)
	assert.Equal(t, 150, balance)
}
