package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"clockwork-server/models"
)

func newJobService(db *gorm.DB) *JobService {
	credits := NewCreditService(db)
	trust := NewTrustService(db)
	return NewJobService(db, credits, trust, nil)
}

func TestPostJob(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)

	job, err := jobs.Post(poster, JobCreateInput{
		Title:         "Fix kitchen sink",
		Category:      "plumbing",
		PaymentAmount: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, models.JobStatusPosted, job.Status)
	assert.Equal(t, 10, job.PlatformFee)
	assert.Equal(t, 90, job.WorkerPayment)

	// Posting pays the fixed reward through the ledger.
	balance, err := jobs.credits.Balance(poster.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	history, err := jobs.credits.History(poster.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.TransactionJobPosting, history[0].Type)
	require.NotNil(t, history[0].RelatedJobID)
	assert.Equal(t, job.ID, *history[0].RelatedJobID)
}

func TestPostJobValidation(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)
	worker := createUser(t, db, models.RoleWorker, 0)

	_, err := jobs.Post(poster, JobCreateInput{Title: "x", Category: "y", PaymentAmount: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = jobs.Post(poster, JobCreateInput{Category: "y", PaymentAmount: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = jobs.Post(worker, JobCreateInput{Title: "x", Category: "y", PaymentAmount: 10})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestApplyMovesJobToApplied(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)
	worker := createUser(t, db, models.RoleWorker, 0)

	job, err := jobs.Post(poster, JobCreateInput{Title: "Clean", Category: "cleaning", PaymentAmount: 50})
	require.NoError(t, err)

	application, err := jobs.Apply(worker, job.ID)
	require.NoError(t, err)

	var stored models.Application
	require.NoError(t, db.First(&stored, application.ID).Error)
	assert.Equal(t, models.ApplicationStatusPending, stored.Status)

	updated, err := jobs.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusApplied, updated.Status)

	// A second worker can still join while the job is APPLIED.
	second := createUser(t, db, models.RoleWorker, 0)
	_, err = jobs.Apply(second, job.ID)
	require.NoError(t, err)

	// But the same worker cannot apply twice.
	_, err = jobs.Apply(worker, job.ID)
	assert.ErrorIs(t, err, ErrDuplicateApplication)
}

func TestApplyRejections(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)
	worker := createUser(t, db, models.RoleWorker, 0)

	job, err := jobs.Post(poster, JobCreateInput{Title: "Clean", Category: "cleaning", PaymentAmount: 50})
	require.NoError(t, err)

	// Role gate: posters cannot apply.
	_, err = jobs.Apply(poster, job.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Trust gate: suspended workers cannot apply.
	suspended := createUser(t, db, models.RoleWorker, 0)
	require.NoError(t, db.Create(&models.TrustRecord{
		WorkerID: suspended.ID, AccessLevel: models.AccessSuspended,
		IsPermanentlyBanned: true,
	}).Error)
	_, err = jobs.Apply(suspended, job.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// State gate: no applications once a worker is selected.
	_, err = jobs.Apply(worker, job.ID)
	require.NoError(t, err)
	_, err = jobs.SelectWorker(poster, job.ID, worker.ID)
	require.NoError(t, err)

	late := createUser(t, db, models.RoleWorker, 0)
	_, err = jobs.Apply(late, job.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestSelectWorker(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)
	chosen := createUser(t, db, models.RoleWorker, 0)
	other := createUser(t, db, models.RoleWorker, 0)

	job, err := jobs.Post(poster, JobCreateInput{Title: "Clean", Category: "cleaning", PaymentAmount: 50})
	require.NoError(t, err)
	_, err = jobs.Apply(chosen, job.ID)
	require.NoError(t, err)
	_, err = jobs.Apply(other, job.ID)
	require.NoError(t, err)

	// Selecting someone who never applied fails.
	stranger := createUser(t, db, models.RoleWorker, 0)
	_, err = jobs.SelectWorker(poster, job.ID, stranger.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Only the poster can select.
	_, err = jobs.SelectWorker(chosen, job.ID, chosen.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := jobs.SelectWorker(poster, job.ID, chosen.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusSelected, updated.Status)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, chosen.ID, *updated.AssignedTo)
	assert.NotNil(t, updated.StartedAt)

	// Chosen application accepted, the rest rejected.
	var apps []models.Application
	require.NoError(t, db.Where("job_id = ?", job.ID).Find(&apps).Error)
	for _, app := range apps {
		if app.WorkerID == chosen.ID {
			assert.Equal(t, models.ApplicationStatusAccepted, app.Status)
		} else {
			assert.Equal(t, models.ApplicationStatusRejected, app.Status)
		}
	}
}

// runToPendingVerification drives a fresh job to PENDING_VERIFICATION.
func runToPendingVerification(t *testing.T, db *gorm.DB, jobs *JobService, poster, worker *models.User) *models.Job {
	t.Helper()
	job, err := jobs.Post(poster, JobCreateInput{Title: "Clean", Category: "cleaning", PaymentAmount: 100})
	require.NoError(t, err)
	_, err = jobs.Apply(worker, job.ID)
	require.NoError(t, err)
	_, err = jobs.SelectWorker(poster, job.ID, worker.ID)
	require.NoError(t, err)
	_, err = jobs.StartWork(worker, job.ID)
	require.NoError(t, err)
	_, err = jobs.SubmitCompletion(worker, job.ID, CompletionProof{Description: "done"})
	require.NoError(t, err)

	job, err = jobs.GetJob(job.ID)
	require.NoError(t, err)
	require.Equal(t, models.JobStatusPendingVerification, job.Status)
	return job
}

func TestVerifyApproved(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)
	worker := createUser(t, db, models.RoleWorker, 0)

	job := runToPendingVerification(t, db, jobs, poster, worker)

	rating := 4
	updated, err := jobs.Verify(poster, job.ID, true, &rating, "great work")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)

	// Worker gets the net payment through the ledger.
	balance, err := jobs.credits.Balance(worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, balance)

	history, err := jobs.credits.History(worker.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.TransactionJobCompletion, history[0].Type)

	// Lifetime counters on the worker profile.
	var profile models.WorkerProfile
	require.NoError(t, db.Where("worker_id = ?", worker.ID).First(&profile).Error)
	assert.Equal(t, 1, profile.TotalJobsCompleted)
	assert.Equal(t, 90, profile.TotalEarnings)
	assert.Equal(t, 4.0, profile.Rating)

	// Verifying twice fails.
	_, err = jobs.Verify(poster, job.ID, true, nil, "")
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestVerifyRejectedDisputesWithoutPayment(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)
	worker := createUser(t, db, models.RoleWorker, 0)

	job := runToPendingVerification(t, db, jobs, poster, worker)

	updated, err := jobs.Verify(poster, job.ID, false, nil, "not done")
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDisputed, updated.Status)

	balance, err := jobs.credits.Balance(worker.ID)
	require.NoError(t, err)
	assert.Zero(t, balance)
}

func TestVerifyWithoutCompletion(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)

	job, err := jobs.Post(poster, JobCreateInput{Title: "Clean", Category: "cleaning", PaymentAmount: 50})
	require.NoError(t, err)

	_, err = jobs.Verify(poster, job.ID, true, nil, "")
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestCancelOnlyPostedJobs(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)
	worker := createUser(t, db, models.RoleWorker, 0)

	job, err := jobs.Post(poster, JobCreateInput{Title: "Clean", Category: "cleaning", PaymentAmount: 50})
	require.NoError(t, err)

	// Cancels fine while POSTED.
	updated, err := jobs.Cancel(poster, job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCancelled, updated.Status)

	// Not once applications exist.
	job, err = jobs.Post(poster, JobCreateInput{Title: "Clean again", Category: "cleaning", PaymentAmount: 50})
	require.NoError(t, err)
	_, err = jobs.Apply(worker, job.ID)
	require.NoError(t, err)

	_, err = jobs.Cancel(poster, job.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestReportPenaltyAgainstWorker(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)
	worker := createUser(t, db, models.RoleWorker, 0)

	job, err := jobs.Post(poster, JobCreateInput{Title: "Clean", Category: "cleaning", PaymentAmount: 50})
	require.NoError(t, err)

	// No counterparty yet.
	_, err = jobs.ReportPenalty(poster, job.ID, models.PenaltyNoShow, "never came")
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	_, err = jobs.Apply(worker, job.ID)
	require.NoError(t, err)
	_, err = jobs.SelectWorker(poster, job.ID, worker.ID)
	require.NoError(t, err)

	penalty, err := jobs.ReportPenalty(poster, job.ID, models.PenaltyNoShow, "never came")
	require.NoError(t, err)
	assert.Equal(t, models.PenaltyStatusPending, penalty.Status)
	assert.Equal(t, worker.ID, penalty.UserID)
	assert.Equal(t, 25, penalty.Amount)

	// Broke worker: the debit clamps to zero but still leaves a ledger trace.
	history, err := jobs.credits.History(worker.ID, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.TransactionPenalty, history[0].Type)
	assert.Equal(t, 0, history[0].Amount)

	// The score effect routes through the trust engine.
	var record models.TrustRecord
	require.NoError(t, db.Where("worker_id = ?", worker.ID).First(&record).Error)
	assert.Equal(t, 75, record.Score)
	assert.Equal(t, 2, record.Strikes)

	// Invalid penalty types are rejected up front.
	_, err = jobs.ReportPenalty(poster, job.ID, "TARDINESS", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReportPenaltyAgainstPoster(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 100)
	worker := createUser(t, db, models.RoleWorker, 0)

	job, err := jobs.Post(poster, JobCreateInput{Title: "Clean", Category: "cleaning", PaymentAmount: 50})
	require.NoError(t, err)
	_, err = jobs.Apply(worker, job.ID)
	require.NoError(t, err)
	_, err = jobs.SelectWorker(poster, job.ID, worker.ID)
	require.NoError(t, err)

	_, err = jobs.ReportPenalty(worker, job.ID, models.PenaltyFalseWorkReport, "lied about the work")
	require.NoError(t, err)

	// Posters have no trust record; the flat deduction hits the user row.
	var u models.User
	require.NoError(t, db.First(&u, poster.ID).Error)
	assert.Equal(t, 90, u.CreditScore)

	var count int64
	require.NoError(t, db.Model(&models.TrustRecord{}).
		Where("worker_id = ?", poster.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRaiseDispute(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)
	worker := createUser(t, db, models.RoleWorker, 0)

	job, err := jobs.Post(poster, JobCreateInput{Title: "Clean", Category: "cleaning", PaymentAmount: 50})
	require.NoError(t, err)
	_, err = jobs.Apply(worker, job.ID)
	require.NoError(t, err)
	_, err = jobs.SelectWorker(poster, job.ID, worker.ID)
	require.NoError(t, err)

	_, err = jobs.RaiseDispute(poster, job.ID, models.DisputeWorkNotDone, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	dispute, err := jobs.RaiseDispute(poster, job.ID, models.DisputeWorkNotDone, "nothing was done")
	require.NoError(t, err)
	assert.Equal(t, models.DisputeStatusOpen, dispute.Status)
	assert.Equal(t, poster.ID, dispute.RaisedBy)
	assert.Equal(t, worker.ID, dispute.RaisedAgainst)

	updated, err := jobs.GetJob(job.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDisputed, updated.Status)

	// DISPUTED is terminal: nothing else can happen.
	_, err = jobs.StartWork(worker, job.ID)
	assert.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestOnlyPartiesCanReport(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)
	worker := createUser(t, db, models.RoleWorker, 0)
	outsider := createUser(t, db, models.RoleUser, 0)

	job, err := jobs.Post(poster, JobCreateInput{Title: "Clean", Category: "cleaning", PaymentAmount: 50})
	require.NoError(t, err)
	_, err = jobs.Apply(worker, job.ID)
	require.NoError(t, err)
	_, err = jobs.SelectWorker(poster, job.ID, worker.ID)
	require.NoError(t, err)

	_, err = jobs.ReportPenalty(outsider, job.ID, models.PenaltyNoShow, "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = jobs.RaiseDispute(outsider, job.ID, models.DisputeOther, "meddling")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestListAndReadProjections(t *testing.T) {
	db := newTestDB(t)
	jobs := newJobService(db)
	poster := createUser(t, db, models.RoleUser, 0)
	worker := createUser(t, db, models.RoleWorker, 0)

	open, err := jobs.Post(poster, JobCreateInput{Title: "Open job", Category: "cleaning", PaymentAmount: 50})
	require.NoError(t, err)
	cancelled, err := jobs.Post(poster, JobCreateInput{Title: "Cancelled job", Category: "cleaning", PaymentAmount: 50})
	require.NoError(t, err)
	_, err = jobs.Cancel(poster, cancelled.ID)
	require.NoError(t, err)

	// Default listing shows only jobs open to workers.
	list, err := jobs.ListJobs("")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].ID)

	list, err = jobs.ListJobs(string(models.JobStatusCancelled))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, cancelled.ID, list[0].ID)

	_, err = jobs.Apply(worker, open.ID)
	require.NoError(t, err)

	mine, err := jobs.MyJobs(poster)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, item := range mine {
		if item.ID == open.ID {
			assert.Equal(t, int64(1), item.ApplicantCount)
		}
	}

	// Applications are poster-only.
	_, err = jobs.ApplicationsForJob(worker, open.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	apps, err := jobs.ApplicationsForJob(poster, open.ID)
	require.NoError(t, err)
	assert.Len(t, apps, 1)

	workerApps, err := jobs.MyApplications(worker)
	require.NoError(t, err)
	require.Len(t, workerApps, 1)
	assert.Equal(t, open.ID, workerApps[0].JobID)
}
