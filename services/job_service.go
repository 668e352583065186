package services

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"clockwork-server/config"
	"clockwork-server/models"
)

// Notifier delivers user-facing notifications. Dispatch is best-effort and
// always happens after the surrounding transaction has committed; a delivery
// failure never rolls back a committed job or ledger change.
type Notifier interface {
	Notify(userID uint, title, message, notificationType string)
}

// JobCreateInput is the payload for posting a job.
type JobCreateInput struct {
	Title           string
	Category        string
	Description     string
	PaymentAmount   int
	Images          string
	LocationLat     float64
	LocationLng     float64
	LocationAddress string
}

// CompletionProof is the payload a worker submits with a completion.
type CompletionProof struct {
	Images      string
	Description string
}

// JobService owns the job state machine. It validates actor-permitted
// transitions and triggers ledger and trust side effects, with the job-state
// mutation and its side effects committed as one atomic unit.
type JobService struct {
	db       *gorm.DB
	credits  *CreditService
	trust    *TrustService
	notifier Notifier
}

// NewJobService creates a new job lifecycle service
func NewJobService(db *gorm.DB, credits *CreditService, trust *TrustService, notifier Notifier) *JobService {
	return &JobService{db: db, credits: credits, trust: trust, notifier: notifier}
}

// pendingNotification is buffered during a transaction and dispatched only
// after commit.
type pendingNotification struct {
	userID  uint
	title   string
	message string
	ntype   string
}

func (s *JobService) dispatch(notifications []pendingNotification) {
	if s.notifier == nil {
		return
	}
	for _, n := range notifications {
		go s.notifier.Notify(n.userID, n.title, n.message, n.ntype)
	}
}

// authorize is the single capability check for job-lifecycle operations,
// keyed by operation and the actor's relationship to the job.
func (s *JobService) authorize(op string, actor *models.User, job *models.Job) error {
	switch op {
	case "post":
		if !actor.IsUser() {
			return fmt.Errorf("%w: only users can post jobs", ErrPermissionDenied)
		}
	case "apply":
		if !actor.IsWorker() {
			return fmt.Errorf("%w: only workers can apply", ErrPermissionDenied)
		}
		if job.PostedBy == actor.ID {
			return fmt.Errorf("%w: cannot apply to own job", ErrPermissionDenied)
		}
	case "select-worker", "verify", "cancel":
		if job.PostedBy != actor.ID {
			return fmt.Errorf("%w: only the job poster can %s", ErrPermissionDenied, op)
		}
	case "start-work", "submit-completion":
		if job.AssignedTo == nil || *job.AssignedTo != actor.ID {
			return fmt.Errorf("%w: only the assigned worker can %s", ErrPermissionDenied, op)
		}
	case "report-penalty", "raise-dispute":
		if !job.IsParty(actor.ID) {
			return fmt.Errorf("%w: not a party to this job", ErrPermissionDenied)
		}
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrPermissionDenied, op)
	}
	return nil
}

// loadJobTx fetches a job for update inside a transaction.
func (s *JobService) loadJobTx(tx *gorm.DB, jobID uint) (*models.Job, error) {
	var job models.Job
	if err := tx.First(&job, jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
		}
		return nil, err
	}
	return &job, nil
}

// transitionTx moves a job to the next status, re-checking the transition
// table against the freshly loaded row so a concurrent loser fails with a
// precondition error instead of corrupting state.
func (s *JobService) transitionTx(tx *gorm.DB, job *models.Job, next models.JobStatus) error {
	if !job.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: job is %s, cannot move to %s", ErrPreconditionFailed, job.Status, next)
	}
	job.Status = next
	return nil
}

// Post creates a job in POSTED state and credits the poster the fixed posting
// reward. Fee and worker payment are computed once here and never change.
func (s *JobService) Post(actor *models.User, input JobCreateInput) (*models.Job, error) {
	if err := s.authorize("post", actor, nil); err != nil {
		return nil, err
	}
	if input.PaymentAmount <= 0 {
		return nil, fmt.Errorf("%w: payment amount must be positive", ErrInvalidInput)
	}
	if input.Title == "" || input.Category == "" {
		return nil, fmt.Errorf("%w: title and category are required", ErrInvalidInput)
	}

	feePct := config.AppConfig.Credits.PlatformFeePercentage
	platformFee := int(math.Round(float64(input.PaymentAmount) * feePct / 100))
	reward := config.AppConfig.Credits.JobPostingReward

	job := models.Job{
		Title:           input.Title,
		Category:        input.Category,
		Description:     input.Description,
		PaymentAmount:   input.PaymentAmount,
		PlatformFee:     platformFee,
		WorkerPayment:   input.PaymentAmount - platformFee,
		Images:          input.Images,
		Status:          models.JobStatusPosted,
		PostedBy:        actor.ID,
		LocationLat:     input.LocationLat,
		LocationLng:     input.LocationLng,
		LocationAddress: input.LocationAddress,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&job).Error; err != nil {
			return err
		}
		_, err := s.credits.CreditTx(tx, actor.ID, models.TransactionJobPosting, reward,
			fmt.Sprintf("Job posted - you earned %d credits!", reward), &job.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Apply creates a PENDING application and moves a POSTED job to APPLIED.
// Later applications join an already-APPLIED job without a status change so
// the poster can choose among several workers.
func (s *JobService) Apply(actor *models.User, jobID uint) (*models.Application, error) {
	// Trust gate: suspended and banned workers cannot apply.
	perm, err := s.trust.CheckPermission(actor.ID, "apply_for_jobs")
	if err != nil {
		return nil, err
	}
	if !perm.Allowed {
		return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, perm.Reason)
	}

	var application models.Application
	var posterID uint
	err = s.db.Transaction(func(tx *gorm.DB) error {
		job, txErr := s.loadJobTx(tx, jobID)
		if txErr != nil {
			return txErr
		}
		if txErr := s.authorize("apply", actor, job); txErr != nil {
			return txErr
		}

		var existing models.Application
		txErr = tx.Where("job_id = ? AND worker_id = ?", jobID, actor.ID).First(&existing).Error
		if txErr == nil {
			return ErrDuplicateApplication
		}
		if txErr != gorm.ErrRecordNotFound {
			return txErr
		}

		if job.Status != models.JobStatusPosted && job.Status != models.JobStatusApplied {
			return fmt.Errorf("%w: job is %s, not open for applications", ErrPreconditionFailed, job.Status)
		}

		application = models.Application{JobID: jobID, WorkerID: actor.ID}
		if txErr := tx.Create(&application).Error; txErr != nil {
			return txErr
		}

		if job.Status == models.JobStatusPosted {
			if txErr := s.transitionTx(tx, job, models.JobStatusApplied); txErr != nil {
				return txErr
			}
			if txErr := tx.Save(job).Error; txErr != nil {
				return txErr
			}
		}
		posterID = job.PostedBy
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch([]pendingNotification{
		{posterID, "New Application", "Someone applied to your job", "applied"},
	})
	return &application, nil
}

// SelectWorker assigns the chosen worker on an APPLIED job, accepts their
// application and rejects every other one for the job.
func (s *JobService) SelectWorker(actor *models.User, jobID, workerID uint) (*models.Job, error) {
	var job *models.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		job, txErr = s.loadJobTx(tx, jobID)
		if txErr != nil {
			return txErr
		}
		if txErr := s.authorize("select-worker", actor, job); txErr != nil {
			return txErr
		}

		var application models.Application
		txErr = tx.Where("job_id = ? AND worker_id = ?", jobID, workerID).First(&application).Error
		if txErr == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: worker %d has not applied to job %d", ErrNotFound, workerID, jobID)
		}
		if txErr != nil {
			return txErr
		}

		if txErr := s.transitionTx(tx, job, models.JobStatusSelected); txErr != nil {
			return txErr
		}

		now := time.Now()
		job.AssignedTo = &workerID
		job.StartedAt = &now // "started" here means assigned, not work begun
		if txErr := tx.Save(job).Error; txErr != nil {
			return txErr
		}

		if txErr := tx.Model(&models.Application{}).
			Where("job_id = ? AND worker_id <> ?", jobID, workerID).
			Update("status", models.ApplicationStatusRejected).Error; txErr != nil {
			return txErr
		}
		return tx.Model(&models.Application{}).
			Where("job_id = ? AND worker_id = ?", jobID, workerID).
			Update("status", models.ApplicationStatusAccepted).Error
	})
	if err != nil {
		return nil, err
	}

	feePct := config.AppConfig.Credits.PlatformFeePercentage
	s.dispatch([]pendingNotification{
		{workerID, "Worker Selected",
			fmt.Sprintf("You have been selected! Payment: %d credits (after %.0f%% platform fee)", job.WorkerPayment, feePct),
			"selected"},
	})
	return job, nil
}

// StartWork moves a SELECTED job to IN_PROGRESS.
func (s *JobService) StartWork(actor *models.User, jobID uint) (*models.Job, error) {
	var job *models.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		job, txErr = s.loadJobTx(tx, jobID)
		if txErr != nil {
			return txErr
		}
		if txErr := s.authorize("start-work", actor, job); txErr != nil {
			return txErr
		}
		if txErr := s.transitionTx(tx, job, models.JobStatusInProgress); txErr != nil {
			return txErr
		}
		return tx.Save(job).Error
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// SubmitCompletion records the worker's proof and moves the job to
// PENDING_VERIFICATION.
func (s *JobService) SubmitCompletion(actor *models.User, jobID uint, proof CompletionProof) (*models.JobCompletion, error) {
	var completion models.JobCompletion
	var posterID uint
	var workerPayment int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		job, txErr := s.loadJobTx(tx, jobID)
		if txErr != nil {
			return txErr
		}
		if txErr := s.authorize("submit-completion", actor, job); txErr != nil {
			return txErr
		}
		if txErr := s.transitionTx(tx, job, models.JobStatusPendingVerification); txErr != nil {
			return txErr
		}
		if txErr := tx.Save(job).Error; txErr != nil {
			return txErr
		}

		completion = models.JobCompletion{
			JobID:            jobID,
			WorkerID:         actor.ID,
			ProofImages:      proof.Images,
			ProofDescription: proof.Description,
		}
		if txErr := tx.Create(&completion).Error; txErr != nil {
			return txErr
		}
		posterID = job.PostedBy
		workerPayment = job.WorkerPayment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch([]pendingNotification{
		{posterID, "Work Submitted",
			fmt.Sprintf("Worker submitted work. Payment: %d credits", workerPayment),
			"verification"},
	})
	return &completion, nil
}

// Verify resolves a PENDING_VERIFICATION job. On approval the worker is paid
// the net amount, rewarded by the trust engine and their profile counters
// updated, all in one transaction. On rejection the job goes to DISPUTED with
// no ledger or trust effect.
func (s *JobService) Verify(actor *models.User, jobID uint, verified bool, rating *int, feedback string) (*models.Job, error) {
	var job *models.Job
	var notifications []pendingNotification
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		job, txErr = s.loadJobTx(tx, jobID)
		if txErr != nil {
			return txErr
		}
		if txErr := s.authorize("verify", actor, job); txErr != nil {
			return txErr
		}

		var completion models.JobCompletion
		txErr = tx.Where("job_id = ?", jobID).Order("submitted_at DESC").First(&completion).Error
		if txErr == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: no completion submitted for this job", ErrPreconditionFailed)
		}
		if txErr != nil {
			return txErr
		}
		if completion.UserVerifiedAt != nil {
			return fmt.Errorf("%w: completion already verified", ErrPreconditionFailed)
		}

		now := time.Now()
		completion.UserVerified = verified
		completion.UserVerifiedAt = &now
		completion.Rating = rating
		if txErr := tx.Save(&completion).Error; txErr != nil {
			return txErr
		}

		if !verified {
			if txErr := s.transitionTx(tx, job, models.JobStatusDisputed); txErr != nil {
				return txErr
			}
			return tx.Save(job).Error
		}

		if txErr := s.transitionTx(tx, job, models.JobStatusCompleted); txErr != nil {
			return txErr
		}
		job.CompletedAt = &now
		if txErr := tx.Save(job).Error; txErr != nil {
			return txErr
		}

		workerID := *job.AssignedTo
		if job.WorkerPayment > 0 {
			desc := fmt.Sprintf("Payment for: %s (Job: %d, Platform fee: %d)",
				job.Title, job.PaymentAmount, job.PlatformFee)
			if _, txErr := s.credits.CreditTx(tx, workerID, models.TransactionJobCompletion,
				job.WorkerPayment, desc, &job.ID); txErr != nil {
				return txErr
			}
		}

		if _, txErr := s.trust.RewardCompletedJobTx(tx, workerID, &job.ID); txErr != nil {
			return txErr
		}

		if txErr := s.updateWorkerProfileTx(tx, workerID, job.WorkerPayment, rating); txErr != nil {
			return txErr
		}

		notifications = append(notifications, pendingNotification{
			workerID, "Job Completed",
			fmt.Sprintf("You earned %d credits! (%d job - %d platform fee)",
				job.WorkerPayment, job.PaymentAmount, job.PlatformFee),
			"completed",
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(notifications)
	return job, nil
}

// updateWorkerProfileTx bumps the worker's lifetime counters and rating on a
// verified completion, creating the profile on first touch.
func (s *JobService) updateWorkerProfileTx(tx *gorm.DB, workerID uint, earnings int, rating *int) error {
	var profile models.WorkerProfile
	err := tx.Where("worker_id = ?", workerID).First(&profile).Error
	if err == gorm.ErrRecordNotFound {
		profile = models.WorkerProfile{WorkerID: workerID, Rating: 5}
	} else if err != nil {
		return err
	}

	profile.TotalJobsCompleted++
	profile.TotalEarnings += earnings
	if rating != nil {
		profile.Rating = float64(*rating)
	}
	return tx.Save(&profile).Error
}

// Cancel cancels a POSTED job before any worker has applied.
func (s *JobService) Cancel(actor *models.User, jobID uint) (*models.Job, error) {
	var job *models.Job
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		job, txErr = s.loadJobTx(tx, jobID)
		if txErr != nil {
			return txErr
		}
		if txErr := s.authorize("cancel", actor, job); txErr != nil {
			return txErr
		}
		if job.Status != models.JobStatusPosted {
			return fmt.Errorf("%w: only POSTED jobs can be cancelled", ErrPreconditionFailed)
		}
		if txErr := s.transitionTx(tx, job, models.JobStatusCancelled); txErr != nil {
			return txErr
		}
		return tx.Save(job).Error
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// penaltyViolation maps a reported penalty type onto the trust engine's
// violation catalogue so strikes and suspensions trigger consistently.
var penaltyViolation = map[models.PenaltyType]string{
	models.PenaltyFalseWorkReport: "FALSE_REPORT",
	models.PenaltyNoShow:          "NO_SHOW",
	models.PenaltyPoorWork:        "POOR_WORK",
	models.PenaltyFalseDispute:    "FALSE_DISPUTE",
}

// ReportPenalty lets either job party report the other. The counterparty is
// debited the fixed penalty amount (clamped at their balance, inside the
// ledger) and, when the counterparty is a worker, the score effect is routed
// through the trust engine so strikes and suspension logic stay consistent.
func (s *JobService) ReportPenalty(actor *models.User, jobID uint, penaltyType models.PenaltyType, description string) (*models.Penalty, error) {
	if !models.IsValidPenaltyType(penaltyType) {
		return nil, fmt.Errorf("%w: penalty type %q", ErrInvalidInput, penaltyType)
	}

	var penalty models.Penalty
	var penalizedID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		job, txErr := s.loadJobTx(tx, jobID)
		if txErr != nil {
			return txErr
		}
		if txErr := s.authorize("report-penalty", actor, job); txErr != nil {
			return txErr
		}

		penalizedID = job.Counterparty(actor.ID)
		if penalizedID == 0 {
			return fmt.Errorf("%w: job has no counterparty to penalize", ErrPreconditionFailed)
		}

		var penalized models.User
		if txErr := tx.First(&penalized, penalizedID).Error; txErr != nil {
			return txErr
		}

		amount := config.AppConfig.Credits.PenaltyAmount
		if _, _, txErr := s.credits.DebitAtMostTx(tx, penalizedID, models.TransactionPenalty,
			amount, fmt.Sprintf("Penalty: %s", penaltyType), &jobID); txErr != nil {
			return txErr
		}

		if penalized.IsWorker() {
			if _, txErr := s.trust.ApplyViolationTx(tx, penalizedID, penaltyViolation[penaltyType], &jobID, description); txErr != nil {
				return txErr
			}
		} else {
			// Posters have no trust record; mirror the legacy flat deduction
			// on the User score field, clamped at zero.
			newScore := penalized.CreditScore - 10
			if newScore < 0 {
				newScore = 0
			}
			if txErr := tx.Model(&models.User{}).Where("id = ?", penalizedID).
				Update("credit_score", newScore).Error; txErr != nil {
				return txErr
			}
		}

		penalty = models.Penalty{
			UserID:       penalizedID,
			Type:         penaltyType,
			Amount:       amount,
			Description:  description,
			ReportedBy:   actor.ID,
			RelatedJobID: &jobID,
			Status:       models.PenaltyStatusPending,
		}
		return tx.Create(&penalty).Error
	})
	if err != nil {
		return nil, err
	}

	s.dispatch([]pendingNotification{
		{penalizedID, "Penalty Reported",
			fmt.Sprintf("A %s violation was reported against you", penaltyType), "penalty"},
	})
	return &penalty, nil
}

// RaiseDispute opens a dispute between the job parties and forces the job
// into the DISPUTED terminal state.
func (s *JobService) RaiseDispute(actor *models.User, jobID uint, disputeType models.DisputeType, description string) (*models.Dispute, error) {
	if !models.IsValidDisputeType(disputeType) {
		return nil, fmt.Errorf("%w: dispute type %q", ErrInvalidInput, disputeType)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}

	// Workers must hold the create_dispute capability.
	if actor.IsWorker() {
		perm, err := s.trust.CheckPermission(actor.ID, "create_dispute")
		if err != nil {
			return nil, err
		}
		if !perm.Allowed {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, perm.Reason)
		}
	}

	var dispute models.Dispute
	var respondentID uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		job, txErr := s.loadJobTx(tx, jobID)
		if txErr != nil {
			return txErr
		}
		if txErr := s.authorize("raise-dispute", actor, job); txErr != nil {
			return txErr
		}

		respondentID = job.Counterparty(actor.ID)
		if respondentID == 0 {
			return fmt.Errorf("%w: job has no counterparty to dispute", ErrPreconditionFailed)
		}

		if txErr := s.transitionTx(tx, job, models.JobStatusDisputed); txErr != nil {
			return txErr
		}
		if txErr := tx.Save(job).Error; txErr != nil {
			return txErr
		}

		dispute = models.Dispute{
			JobID:         jobID,
			RaisedBy:      actor.ID,
			RaisedAgainst: respondentID,
			Type:          disputeType,
			Description:   description,
			Status:        models.DisputeStatusOpen,
		}
		return tx.Create(&dispute).Error
	})
	if err != nil {
		return nil, err
	}

	s.dispatch([]pendingNotification{
		{respondentID, "Dispute Raised",
			fmt.Sprintf("A dispute was raised on job %d", jobID), "dispute"},
	})
	return &dispute, nil
}

// ListJobs returns jobs filtered by status; with no filter it returns jobs
// still open to workers (POSTED and APPLIED).
func (s *JobService) ListJobs(status string) ([]models.Job, error) {
	query := s.db.Preload("Poster").Preload("Worker").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	} else {
		query = query.Where("status IN ?", []models.JobStatus{models.JobStatusPosted, models.JobStatusApplied})
	}
	var jobs []models.Job
	err := query.Find(&jobs).Error
	return jobs, err
}

// JobWithApplicants pairs a job with its application count for the poster view.
type JobWithApplicants struct {
	models.Job
	ApplicantCount int64 `json:"applicant_count"`
}

// MyJobs returns the actor's posted jobs with applicant counts.
func (s *JobService) MyJobs(actor *models.User) ([]JobWithApplicants, error) {
	var jobs []models.Job
	if err := s.db.Where("posted_by = ?", actor.ID).Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, err
	}

	out := make([]JobWithApplicants, 0, len(jobs))
	for _, job := range jobs {
		var count int64
		if err := s.db.Model(&models.Application{}).Where("job_id = ?", job.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		out = append(out, JobWithApplicants{Job: job, ApplicantCount: count})
	}
	return out, nil
}

// GetJob returns one job with its parties preloaded.
func (s *JobService) GetJob(jobID uint) (*models.Job, error) {
	var job models.Job
	err := s.db.Preload("Poster").Preload("Worker").First(&job, jobID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("%w: job %d", ErrNotFound, jobID)
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// ApplicationsForJob returns a job's applications; poster only.
func (s *JobService) ApplicationsForJob(actor *models.User, jobID uint) ([]models.Application, error) {
	job, err := s.GetJob(jobID)
	if err != nil {
		return nil, err
	}
	if job.PostedBy != actor.ID {
		return nil, fmt.Errorf("%w: only the poster can view applications", ErrPermissionDenied)
	}

	var applications []models.Application
	err = s.db.Where("job_id = ?", jobID).Preload("Worker").Find(&applications).Error
	return applications, err
}

// MyPenalties returns penalties reported against the actor.
func (s *JobService) MyPenalties(actor *models.User) ([]models.Penalty, error) {
	var penalties []models.Penalty
	err := s.db.Where("user_id = ?", actor.ID).
		Order("created_at DESC").
		Find(&penalties).Error
	return penalties, err
}

// MyDisputes returns disputes the actor raised or is named in.
func (s *JobService) MyDisputes(actor *models.User) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := s.db.Where("raised_by = ? OR raised_against = ?", actor.ID, actor.ID).
		Preload("Job").
		Order("created_at DESC").
		Find(&disputes).Error
	return disputes, err
}

// MyApplications returns the worker's applications with job details.
func (s *JobService) MyApplications(actor *models.User) ([]models.Application, error) {
	var applications []models.Application
	err := s.db.Where("worker_id = ?", actor.ID).
		Preload("Job").
		Order("applied_at DESC").
		Find(&applications).Error
	return applications, err
}
