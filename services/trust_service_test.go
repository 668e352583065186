package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clockwork-server/models"
)

func TestCalculateAccessLevel(t *testing.T) {
	cases := []struct {
		score int
		level models.AccessLevel
	}{
		{100, models.AccessPremium},
		{90, models.AccessPremium},
		{89, models.AccessTrusted},
		{70, models.AccessTrusted},
		{69, models.AccessStandard},
		{50, models.AccessStandard},
		{49, models.AccessRestricted},
		{30, models.AccessRestricted},
		{29, models.AccessSuspended},
		{0, models.AccessSuspended},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.level, CalculateAccessLevel(tc.score), "score %d", tc.score)
	}
}

func TestApplyViolationDeductsPointsAndStrikes(t *testing.T) {
	db := newTestDB(t)
	trust := NewTrustService(db)
	worker := createUser(t, db, models.RoleWorker, 0)

	record, err := trust.ApplyViolation(worker.ID, "NO_SHOW", nil, "")
	require.NoError(t, err)

	assert.Equal(t, 75, record.Score)
	assert.Equal(t, 2, record.Strikes)
	assert.Equal(t, models.AccessTrusted, record.AccessLevel)
	assert.Equal(t, 1, record.TotalViolations)
	assert.False(t, record.IsTemporarilySuspended)
	assert.False(t, record.IsPermanentlyBanned)

	// History entry carries the catalogue description when none was given.
	var violations []models.TrustViolation
	require.NoError(t, db.Where("trust_record_id = ?", record.ID).Find(&violations).Error)
	require.Len(t, violations, 1)
	assert.Equal(t, "NO_SHOW", violations[0].Type)
	assert.Equal(t, 25, violations[0].PointsDeducted)
	assert.NotEmpty(t, violations[0].Description)

	// Legacy score mirror on the user row.
	var u models.User
	require.NoError(t, db.First(&u, worker.ID).Error)
	assert.Equal(t, 75, u.CreditScore)
}

func TestUnknownViolationType(t *testing.T) {
	db := newTestDB(t)
	trust := NewTrustService(db)
	worker := createUser(t, db, models.RoleWorker, 0)

	_, err := trust.ApplyViolation(worker.ID, "JAYWALKING", nil, "")
	assert.ErrorIs(t, err, ErrUnknownViolationType)
}

func TestStrikeLimitTriggersSuspension(t *testing.T) {
	db := newTestDB(t)
	trust := NewTrustService(db)
	worker := createUser(t, db, models.RoleWorker, 0)

	_, err := trust.ApplyViolation(worker.ID, "NO_SHOW", nil, "")
	require.NoError(t, err)
	record, err := trust.ApplyViolation(worker.ID, "LATE_CANCELLATION", nil, "")
	require.NoError(t, err)

	assert.Equal(t, 3, record.Strikes)
	assert.True(t, record.IsTemporarilySuspended)
	require.NotNil(t, record.SuspensionExpiresAt)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), *record.SuspensionExpiresAt, time.Minute)
}

func TestScoreZeroMeansPermanentBan(t *testing.T) {
	db := newTestDB(t)
	trust := NewTrustService(db)
	worker := createUser(t, db, models.RoleWorker, 0)

	var record *models.TrustRecord
	var err error
	for i := 0; i < 4; i++ {
		record, err = trust.ApplyViolation(worker.ID, "MISCONDUCT", nil, "")
		require.NoError(t, err)
	}

	assert.Equal(t, 0, record.Score)
	assert.True(t, record.IsPermanentlyBanned)
	assert.False(t, record.IsTemporarilySuspended)
	assert.Equal(t, models.AccessSuspended, record.AccessLevel)

	// Ban deactivates the account.
	var u models.User
	require.NoError(t, db.First(&u, worker.ID).Error)
	assert.False(t, u.IsActive)

	// The ban is sticky; a completed job no longer helps.
	record, err = trust.RewardCompletedJob(worker.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, record.Score)
	assert.True(t, record.IsPermanentlyBanned)
}

func TestRewardCompletedJob(t *testing.T) {
	db := newTestDB(t)
	trust := NewTrustService(db)
	worker := createUser(t, db, models.RoleWorker, 0)

	_, err := trust.ApplyViolation(worker.ID, "NO_SHOW", nil, "")
	require.NoError(t, err)

	record, err := trust.RewardCompletedJob(worker.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 77, record.Score)

	var recoveries []models.TrustRecovery
	require.NoError(t, db.Where("trust_record_id = ?", record.ID).Find(&recoveries).Error)
	require.Len(t, recoveries, 1)
	assert.Equal(t, 2, recoveries[0].PointsAdded)
}

func TestRewardIsNoOpAtMaxScore(t *testing.T) {
	db := newTestDB(t)
	trust := NewTrustService(db)
	worker := createUser(t, db, models.RoleWorker, 0)

	record, err := trust.RewardCompletedJob(worker.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 100, record.Score)

	var count int64
	require.NoError(t, db.Model(&models.TrustRecovery{}).
		Where("trust_record_id = ?", record.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRewardLiftsSuspensionAtThreshold(t *testing.T) {
	db := newTestDB(t)
	trust := NewTrustService(db)
	worker := createUser(t, db, models.RoleWorker, 0)

	// Drive the score just below the suspension threshold.
	record, err := trust.ApplyViolation(worker.ID, "MISCONDUCT", nil, "")
	require.NoError(t, err)
	expiry := time.Now().Add(24 * time.Hour)
	require.NoError(t, db.Model(record).Updates(map[string]interface{}{
		"score":                    19,
		"is_temporarily_suspended": true,
		"suspension_expires_at":    expiry,
	}).Error)

	record, err = trust.RewardCompletedJob(worker.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 21, record.Score)
	assert.False(t, record.IsTemporarilySuspended)
	assert.Nil(t, record.SuspensionExpiresAt)
}

func TestPeriodicBonusGates(t *testing.T) {
	db := newTestDB(t)
	trust := NewTrustService(db)
	worker := createUser(t, db, models.RoleWorker, 0)

	// No trust record yet: skipped, not an error.
	record, err := trust.ApplyPeriodicBonus(worker.ID)
	require.NoError(t, err)
	assert.Nil(t, record)

	// Score 96, never granted before: bonus applies and clamps at max.
	seed := models.TrustRecord{WorkerID: worker.ID, Score: 96, AccessLevel: models.AccessPremium}
	require.NoError(t, db.Create(&seed).Error)

	record, err = trust.ApplyPeriodicBonus(worker.ID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 100, record.Score)
	require.NotNil(t, record.LastBonusAt)

	// Already at max: skipped.
	record, err = trust.ApplyPeriodicBonus(worker.ID)
	require.NoError(t, err)
	assert.Nil(t, record)

	// Below the threshold: skipped even with an old last-bonus date.
	old := time.Now().AddDate(0, -2, 0)
	require.NoError(t, db.Model(&seed).Updates(map[string]interface{}{
		"score":         94,
		"last_bonus_at": old,
	}).Error)
	record, err = trust.ApplyPeriodicBonus(worker.ID)
	require.NoError(t, err)
	assert.Nil(t, record)

	// Granted earlier this calendar month: skipped.
	require.NoError(t, db.Model(&seed).Updates(map[string]interface{}{
		"score":         96,
		"last_bonus_at": time.Now().Add(-time.Hour),
	}).Error)
	record, err = trust.ApplyPeriodicBonus(worker.ID)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestReduceStrike(t *testing.T) {
	db := newTestDB(t)
	trust := NewTrustService(db)
	worker := createUser(t, db, models.RoleWorker, 0)

	_, err := trust.ApplyViolation(worker.ID, "NO_SHOW", nil, "")
	require.NoError(t, err)

	// Score 75 >= 50, strikes 2 -> one removed.
	record, err := trust.ReduceStrike(worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, record.Strikes)

	// Below the recovery score nothing happens.
	require.NoError(t, db.Model(record).Update("score", 40).Error)
	record, err = trust.ReduceStrike(worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, record.Strikes)
}

func TestGetTrustStatusLazySuspensionExpiry(t *testing.T) {
	db := newTestDB(t)
	trust := NewTrustService(db)
	worker := createUser(t, db, models.RoleWorker, 0)

	expired := time.Now().Add(-time.Hour)
	seed := models.TrustRecord{
		WorkerID:               worker.ID,
		Score:                  40,
		Strikes:                3,
		AccessLevel:            models.AccessRestricted,
		IsTemporarilySuspended: true,
		SuspensionExpiresAt:    &expired,
	}
	require.NoError(t, db.Create(&seed).Error)

	status, err := trust.GetTrustStatus(worker.ID)
	require.NoError(t, err)
	assert.False(t, status.IsTemporarilySuspended)
	assert.Nil(t, status.SuspensionExpiresAt)
	assert.True(t, status.CanApplyForJobs)

	// And the expiry was persisted, not just projected.
	var stored models.TrustRecord
	require.NoError(t, db.Where("worker_id = ?", worker.ID).First(&stored).Error)
	assert.False(t, stored.IsTemporarilySuspended)
}

func TestGetTrustStatusCreatesDefaultRecord(t *testing.T) {
	db := newTestDB(t)
	trust := NewTrustService(db)
	worker := createUser(t, db, models.RoleWorker, 0)

	status, err := trust.GetTrustStatus(worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, status.Score)
	assert.Equal(t, models.AccessPremium, status.AccessLevel)
	assert.Equal(t, "Premium Worker", status.AccessLevelLabel)
	assert.Equal(t, "#10B981", status.AccessLevelColor)
	assert.True(t, status.CanApplyForJobs)
}

func TestCheckPermission(t *testing.T) {
	db := newTestDB(t)
	trust := NewTrustService(db)

	// Standard worker: can apply, no priority matching.
	standard := createUser(t, db, models.RoleWorker, 0)
	require.NoError(t, db.Create(&models.TrustRecord{
		WorkerID: standard.ID, Score: 60, AccessLevel: models.AccessStandard,
	}).Error)

	result, err := trust.CheckPermission(standard.ID, "apply_for_jobs")
	require.NoError(t, err)
	assert.True(t, result.Allowed)

	result, err = trust.CheckPermission(standard.ID, "priority_matching")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Contains(t, result.Reason, "Standard Worker")

	// Suspended worker: blocked with an expiry date in the reason.
	suspended := createUser(t, db, models.RoleWorker, 0)
	expiry := time.Now().Add(3 * 24 * time.Hour)
	require.NoError(t, db.Create(&models.TrustRecord{
		WorkerID: suspended.ID, Score: 15, AccessLevel: models.AccessSuspended,
		IsTemporarilySuspended: true, SuspensionExpiresAt: &expiry,
	}).Error)

	result, err = trust.CheckPermission(suspended.ID, "apply_for_jobs")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Contains(t, result.Reason, "Suspension expires on")

	// Banned worker: blocked outright.
	banned := createUser(t, db, models.RoleWorker, 0)
	require.NoError(t, db.Create(&models.TrustRecord{
		WorkerID: banned.ID, Score: 0, AccessLevel: models.AccessSuspended,
		IsPermanentlyBanned: true,
	}).Error)

	result, err = trust.CheckPermission(banned.ID, "apply_for_jobs")
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Contains(t, result.Reason, "permanently banned")
}
