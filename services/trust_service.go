package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"clockwork-server/models"
)

// Trust system constants. Workers start fully trusted; every bad action
// reduces trust and good behavior can restore it, never above the maximum.
const (
	TrustInitialScore = 100
	TrustMaxScore     = 100

	// Suspension thresholds
	TrustTempSuspensionThreshold = 20 // score below this = temporary suspension
	TrustPermBanThreshold        = 0  // score at this = permanent ban
	TrustStrikeLimit             = 3  // strikes at or above this = temporary suspension
	TrustSuspensionDays          = 7

	// Recovery settings
	TrustGoodJobBonus        = 2  // points per verified job
	TrustPeriodicBonus       = 5  // monthly consistency bonus
	TrustBonusThreshold      = 95 // minimum score to receive the periodic bonus
	TrustRecoveryCooldownDay = 30 // days between periodic bonuses
	TrustStrikeRecoveryScore = 50 // minimum score for strike reduction
)

// ViolationPolicy describes the penalty attached to one violation type.
type ViolationPolicy struct {
	Points      int
	Strikes     int
	Description string
}

// violationCatalogue is the static violation table. Unknown types are a
// configuration error, not user input.
var violationCatalogue = map[string]ViolationPolicy{
	"NO_SHOW":            {Points: 25, Strikes: 2, Description: "Worker did not show up for the job"},
	"LATE_CANCELLATION":  {Points: 15, Strikes: 1, Description: "Worker cancelled less than 2 hours before job"},
	"EARLY_CANCELLATION": {Points: 5, Strikes: 0, Description: "Worker cancelled more than 2 hours before job (reduced penalty)"},
	"MISCONDUCT":         {Points: 30, Strikes: 3, Description: "Worker misconduct or inappropriate behavior"},
	"POOR_WORK":          {Points: 20, Strikes: 2, Description: "Work quality was unsatisfactory"},
	"FALSE_DISPUTE":      {Points: 15, Strikes: 1, Description: "Worker raised false dispute"},
	"FALSE_REPORT":       {Points: 10, Strikes: 1, Description: "False work completion report"},
	"LATE_ARRIVAL":       {Points: 5, Strikes: 0, Description: "Worker arrived more than 15 minutes late"},
}

// accessLevelInfo carries the human-facing label and color for a level.
type accessLevelInfo struct {
	Min   int
	Label string
	Color string
}

var accessLevels = map[models.AccessLevel]accessLevelInfo{
	models.AccessPremium:    {Min: 90, Label: "Premium Worker", Color: "#10B981"},
	models.AccessTrusted:    {Min: 70, Label: "Trusted Worker", Color: "#3B82F6"},
	models.AccessStandard:   {Min: 50, Label: "Standard Worker", Color: "#F59E0B"},
	models.AccessRestricted: {Min: 30, Label: "Restricted Worker", Color: "#F97316"},
	models.AccessSuspended:  {Min: 0, Label: "Suspended", Color: "#EF4444"},
}

// actionPermissions is the static action x access-level permission matrix.
var actionPermissions = map[string]map[models.AccessLevel]bool{
	"apply_for_jobs": {
		models.AccessPremium:    true,
		models.AccessTrusted:    true,
		models.AccessStandard:   true,
		models.AccessRestricted: true,
		models.AccessSuspended:  false,
	},
	"priority_matching": {
		models.AccessPremium:    true,
		models.AccessTrusted:    true,
		models.AccessStandard:   false,
		models.AccessRestricted: false,
		models.AccessSuspended:  false,
	},
	"create_dispute": {
		models.AccessPremium:    true,
		models.AccessTrusted:    true,
		models.AccessStandard:   true,
		models.AccessRestricted: true,
		models.AccessSuspended:  false,
	},
	"view_ratings": {
		models.AccessPremium:    true,
		models.AccessTrusted:    true,
		models.AccessStandard:   true,
		models.AccessRestricted: true,
		models.AccessSuspended:  false,
	},
}

// CalculateAccessLevel maps a score to its access level. Total over 0-100,
// monotonic non-decreasing in score.
func CalculateAccessLevel(score int) models.AccessLevel {
	switch {
	case score >= accessLevels[models.AccessPremium].Min:
		return models.AccessPremium
	case score >= accessLevels[models.AccessTrusted].Min:
		return models.AccessTrusted
	case score >= accessLevels[models.AccessStandard].Min:
		return models.AccessStandard
	case score >= accessLevels[models.AccessRestricted].Min:
		return models.AccessRestricted
	default:
		return models.AccessSuspended
	}
}

// AccessLevelLabel returns the human label for a level.
func AccessLevelLabel(level models.AccessLevel) string {
	if info, ok := accessLevels[level]; ok {
		return info.Label
	}
	return "Unknown"
}

// AccessLevelColor returns the UI color for a level.
func AccessLevelColor(level models.AccessLevel) string {
	if info, ok := accessLevels[level]; ok {
		return info.Color
	}
	return "#6B7280"
}

// TrustService owns the per-worker trust records and every score mutation.
// Score changes always go through here so score, strikes and suspension state
// stay consistent, and the legacy User.CreditScore field is mirrored on every
// change.
type TrustService struct {
	db *gorm.DB
}

// NewTrustService creates a new trust service
func NewTrustService(db *gorm.DB) *TrustService {
	return &TrustService{db: db}
}

// getOrCreateTx loads the worker's trust record, creating a default
// (score 100, PREMIUM) record on first touch. The second return value reports
// whether the record was newly created.
func (s *TrustService) getOrCreateTx(tx *gorm.DB, workerID uint) (*models.TrustRecord, bool, error) {
	var record models.TrustRecord
	err := tx.Where("worker_id = ?", workerID).First(&record).Error
	if err == nil {
		return &record, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}

	record = models.TrustRecord{
		WorkerID:    workerID,
		Score:       TrustInitialScore,
		AccessLevel: models.AccessPremium,
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

// mirrorUserTx copies the trust score onto the User's legacy CreditScore
// field and deactivates the account on permanent ban.
func (s *TrustService) mirrorUserTx(tx *gorm.DB, workerID uint, score int, banned bool) error {
	updates := map[string]interface{}{"credit_score": score}
	if banned {
		updates["is_active"] = false
	}
	return tx.Model(&models.User{}).Where("id = ?", workerID).Updates(updates).Error
}

// ApplyViolation applies a catalogued violation in its own transaction.
func (s *TrustService) ApplyViolation(workerID uint, violationType string, jobID *uint, description string) (*models.TrustRecord, error) {
	var record *models.TrustRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		record, txErr = s.ApplyViolationTx(tx, workerID, violationType, jobID, description)
		return txErr
	})
	return record, err
}

// ApplyViolationTx applies a violation inside an existing transaction:
// deducts points (clamped at 0), adds strikes, evaluates the suspension
// policy and appends an immutable history entry.
func (s *TrustService) ApplyViolationTx(tx *gorm.DB, workerID uint, violationType string, jobID *uint, description string) (*models.TrustRecord, error) {
	policy, ok := violationCatalogue[violationType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownViolationType, violationType)
	}

	record, _, err := s.getOrCreateTx(tx, workerID)
	if err != nil {
		return nil, err
	}

	newScore := record.Score - policy.Points
	if newScore < 0 {
		newScore = 0
	}
	newStrikes := record.Strikes + policy.Strikes

	// Suspension policy, in precedence order: permanent ban wins over
	// temporary suspension, which wins over no change.
	if newScore <= TrustPermBanThreshold || record.IsPermanentlyBanned {
		record.IsPermanentlyBanned = true
		record.IsTemporarilySuspended = false
		record.SuspensionExpiresAt = nil
	} else if newStrikes >= TrustStrikeLimit || newScore < TrustTempSuspensionThreshold {
		expiry := time.Now().Add(TrustSuspensionDays * 24 * time.Hour)
		record.IsTemporarilySuspended = true
		record.SuspensionExpiresAt = &expiry
	}

	record.Score = newScore
	record.Strikes = newStrikes
	record.AccessLevel = CalculateAccessLevel(newScore)
	record.TotalViolations++

	if err := tx.Save(record).Error; err != nil {
		return nil, err
	}

	if description == "" {
		description = policy.Description
	}
	violation := models.TrustViolation{
		TrustRecordID:  record.ID,
		Type:           violationType,
		PointsDeducted: policy.Points,
		StrikesAdded:   policy.Strikes,
		JobID:          jobID,
		Description:    description,
	}
	if err := tx.Create(&violation).Error; err != nil {
		return nil, err
	}

	if err := s.mirrorUserTx(tx, workerID, newScore, record.IsPermanentlyBanned); err != nil {
		return nil, err
	}
	return record, nil
}

// RewardCompletedJob adds the per-job bonus in its own transaction.
func (s *TrustService) RewardCompletedJob(workerID uint, jobID *uint) (*models.TrustRecord, error) {
	var record *models.TrustRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		record, txErr = s.RewardCompletedJobTx(tx, workerID, jobID)
		return txErr
	})
	return record, err
}

// RewardCompletedJobTx adds the fixed per-job bonus, clamped at the maximum.
// A no-op for permanently banned workers and workers already at max score.
// Lifts a temporary suspension once the score clears the threshold again.
func (s *TrustService) RewardCompletedJobTx(tx *gorm.DB, workerID uint, jobID *uint) (*models.TrustRecord, error) {
	record, _, err := s.getOrCreateTx(tx, workerID)
	if err != nil {
		return nil, err
	}

	if record.IsPermanentlyBanned || record.Score >= TrustMaxScore {
		return record, nil
	}

	newScore := record.Score + TrustGoodJobBonus
	if newScore > TrustMaxScore {
		newScore = TrustMaxScore
	}
	record.Score = newScore
	record.AccessLevel = CalculateAccessLevel(newScore)

	if record.IsTemporarilySuspended && newScore >= TrustTempSuspensionThreshold {
		record.IsTemporarilySuspended = false
		record.SuspensionExpiresAt = nil
	}

	if err := tx.Save(record).Error; err != nil {
		return nil, err
	}

	recovery := models.TrustRecovery{
		TrustRecordID: record.ID,
		PointsAdded:   TrustGoodJobBonus,
		Reason:        "Job completed successfully",
	}
	if err := tx.Create(&recovery).Error; err != nil {
		return nil, err
	}

	if err := s.mirrorUserTx(tx, workerID, newScore, false); err != nil {
		return nil, err
	}
	return record, nil
}

// ApplyPeriodicBonus grants the monthly consistency bonus when every
// eligibility gate holds. Returns (nil, nil) when a gate fails; that is a
// normal outcome, distinguished from a found-and-updated record.
func (s *TrustService) ApplyPeriodicBonus(workerID uint) (*models.TrustRecord, error) {
	var record *models.TrustRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.TrustRecord
		if err := tx.Where("worker_id = ?", workerID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}

		if existing.IsPermanentlyBanned {
			return nil
		}
		if existing.Score < TrustBonusThreshold || existing.Score >= TrustMaxScore {
			return nil
		}

		now := time.Now()
		if existing.LastBonusAt != nil {
			// One bonus per calendar month, and at least the cooldown apart.
			if now.Sub(*existing.LastBonusAt) < TrustRecoveryCooldownDay*24*time.Hour {
				return nil
			}
			if existing.LastBonusAt.Month() == now.Month() && existing.LastBonusAt.Year() == now.Year() {
				return nil
			}
		}

		newScore := existing.Score + TrustPeriodicBonus
		if newScore > TrustMaxScore {
			newScore = TrustMaxScore
		}
		existing.Score = newScore
		existing.AccessLevel = CalculateAccessLevel(newScore)
		existing.LastBonusAt = &now

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		recovery := models.TrustRecovery{
			TrustRecordID: existing.ID,
			PointsAdded:   TrustPeriodicBonus,
			Reason:        "Monthly consistent behavior bonus",
		}
		if err := tx.Create(&recovery).Error; err != nil {
			return err
		}

		if err := s.mirrorUserTx(tx, workerID, newScore, false); err != nil {
			return err
		}
		record = &existing
		return nil
	})
	return record, err
}

// ReduceStrike removes one strike after a period of good behavior. Only
// workers whose score has recovered past the threshold qualify.
func (s *TrustService) ReduceStrike(workerID uint) (*models.TrustRecord, error) {
	var record models.TrustRecord
	err := s.db.Where("worker_id = ?", workerID).First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	if record.Strikes == 0 || record.Score < TrustStrikeRecoveryScore {
		return &record, nil
	}

	record.Strikes--
	if err := s.db.Save(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// TrustStatus is the read-side view of a worker's trust record.
type TrustStatus struct {
	Score                  int                     `json:"score"`
	MaxScore               int                     `json:"max_score"`
	Strikes                int                     `json:"strikes"`
	AccessLevel            models.AccessLevel      `json:"access_level"`
	AccessLevelLabel       string                  `json:"access_level_label"`
	AccessLevelColor       string                  `json:"access_level_color"`
	IsTemporarilySuspended bool                    `json:"is_temporarily_suspended"`
	IsPermanentlyBanned    bool                    `json:"is_permanently_banned"`
	SuspensionExpiresAt    *time.Time              `json:"suspension_expires_at"`
	CanApplyForJobs        bool                    `json:"can_apply_for_jobs"`
	TotalViolations        int                     `json:"total_violations"`
	RecentViolations       []models.TrustViolation `json:"recent_violations"`
}

// GetTrustStatus returns the worker's current status, lazily creating a
// default record and lazily expiring a finished temporary suspension. The
// expiry check runs on every read, so repeated calls after the deadline are
// idempotent.
func (s *TrustService) GetTrustStatus(workerID uint) (*TrustStatus, error) {
	var record *models.TrustRecord
	err := s.db.Transaction(func(tx *gorm.DB) error {
		r, _, txErr := s.getOrCreateTx(tx, workerID)
		if txErr != nil {
			return txErr
		}

		if r.IsTemporarilySuspended && r.SuspensionExpiresAt != nil && time.Now().After(*r.SuspensionExpiresAt) {
			r.IsTemporarilySuspended = false
			r.SuspensionExpiresAt = nil
			if txErr := tx.Save(r).Error; txErr != nil {
				return txErr
			}
		}
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	var recent []models.TrustViolation
	if err := s.db.Where("trust_record_id = ?", record.ID).
		Order("created_at DESC, id DESC").
		Limit(5).
		Find(&recent).Error; err != nil {
		return nil, err
	}

	return &TrustStatus{
		Score:                  record.Score,
		MaxScore:               TrustMaxScore,
		Strikes:                record.Strikes,
		AccessLevel:            record.AccessLevel,
		AccessLevelLabel:       AccessLevelLabel(record.AccessLevel),
		AccessLevelColor:       AccessLevelColor(record.AccessLevel),
		IsTemporarilySuspended: record.IsTemporarilySuspended,
		IsPermanentlyBanned:    record.IsPermanentlyBanned,
		SuspensionExpiresAt:    record.SuspensionExpiresAt,
		CanApplyForJobs:        !record.IsTemporarilySuspended && !record.IsPermanentlyBanned,
		TotalViolations:        record.TotalViolations,
		RecentViolations:       recent,
	}, nil
}

// PermissionResult is the outcome of a trust-gated action check.
type PermissionResult struct {
	Allowed      bool               `json:"allowed"`
	Reason       string             `json:"reason,omitempty"`
	CurrentScore int                `json:"current_score"`
	AccessLevel  models.AccessLevel `json:"access_level"`
}

// CheckPermission consults suspension state and the static permission matrix
// for the given action.
func (s *TrustService) CheckPermission(workerID uint, action string) (*PermissionResult, error) {
	status, err := s.GetTrustStatus(workerID)
	if err != nil {
		return nil, err
	}

	if status.IsPermanentlyBanned {
		return &PermissionResult{
			Allowed:      false,
			Reason:       "Account permanently banned due to repeated violations",
			CurrentScore: status.Score,
			AccessLevel:  status.AccessLevel,
		}, nil
	}

	if status.IsTemporarilySuspended {
		reason := "Temporarily suspended"
		if status.SuspensionExpiresAt != nil {
			reason = fmt.Sprintf("Temporarily suspended. Suspension expires on %s", status.SuspensionExpiresAt.Format("Mon Jan 2 2006"))
		}
		return &PermissionResult{
			Allowed:      false,
			Reason:       reason,
			CurrentScore: status.Score,
			AccessLevel:  status.AccessLevel,
		}, nil
	}

	allowed := actionPermissions[action][status.AccessLevel]
	result := &PermissionResult{
		Allowed:      allowed,
		CurrentScore: status.Score,
		AccessLevel:  status.AccessLevel,
	}
	if !allowed {
		result.Reason = fmt.Sprintf("Action not available for %s workers", status.AccessLevelLabel)
	}
	return result, nil
}

// Leaderboard returns the highest-scoring non-banned workers.
func (s *TrustService) Leaderboard(limit int) ([]models.TrustRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var records []models.TrustRecord
	err := s.db.Where("is_permanently_banned = ? AND score > 0", false).
		Order("score DESC, total_violations ASC").
		Limit(limit).
		Preload("Worker").
		Find(&records).Error
	return records, err
}

// WorkersNeedingAttention returns non-banned workers below the score threshold.
func (s *TrustService) WorkersNeedingAttention(threshold int) ([]models.TrustRecord, error) {
	if threshold <= 0 {
		threshold = 50
	}
	var records []models.TrustRecord
	err := s.db.Where("score < ? AND is_permanently_banned = ?", threshold, false).
		Order("score ASC").
		Preload("Worker").
		Find(&records).Error
	return records, err
}

// EligibleForPeriodicBonus lists workers the maintenance job should consider.
func (s *TrustService) EligibleForPeriodicBonus() ([]models.TrustRecord, error) {
	var records []models.TrustRecord
	err := s.db.Where("is_permanently_banned = ? AND score >= ? AND score < ?",
		false, TrustBonusThreshold, TrustMaxScore).
		Find(&records).Error
	return records, err
}

// RecoveringWorkers lists workers with strikes whose score has recovered, for
// the maintenance job's strike reduction pass.
func (s *TrustService) RecoveringWorkers() ([]models.TrustRecord, error) {
	var records []models.TrustRecord
	err := s.db.Where("strikes > 0 AND score >= ? AND is_permanently_banned = ?",
		TrustStrikeRecoveryScore, false).
		Find(&records).Error
	return records, err
}
