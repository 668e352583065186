package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clockwork-server/config"
	"clockwork-server/database"
	"clockwork-server/models"
)

var userSeq int

// newTestDB opens a per-test in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	config.Load()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func createUser(t *testing.T, db *gorm.DB, role models.UserRole, credits int) *models.User {
	t.Helper()
	userSeq++
	user := &models.User{
		Name:        fmt.Sprintf("user-%d", userSeq),
		PhoneNumber: fmt.Sprintf("+222400%05d", userSeq),
		Role:        role,
		IsActive:    true,
		Credits:     credits,
		CreditScore: 100,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
