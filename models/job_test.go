package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to JobStatus
	}{
		{JobStatusPosted, JobStatusApplied},
		{JobStatusPosted, JobStatusCancelled},
		{JobStatusPosted, JobStatusDisputed},
		{JobStatusApplied, JobStatusSelected},
		{JobStatusApplied, JobStatusDisputed},
		{JobStatusSelected, JobStatusInProgress},
		{JobStatusSelected, JobStatusDisputed},
		{JobStatusInProgress, JobStatusPendingVerification},
		{JobStatusInProgress, JobStatusDisputed},
		{JobStatusPendingVerification, JobStatusCompleted},
		{JobStatusPendingVerification, JobStatusDisputed},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be allowed", tc.from, tc.to)
	}

	denied := []struct {
		from, to JobStatus
	}{
		{JobStatusPosted, JobStatusSelected},
		{JobStatusPosted, JobStatusCompleted},
		{JobStatusApplied, JobStatusCancelled},
		{JobStatusApplied, JobStatusPosted},
		{JobStatusSelected, JobStatusApplied},
		{JobStatusInProgress, JobStatusCompleted},
		{JobStatusPendingVerification, JobStatusInProgress},
		{JobStatusCompleted, JobStatusDisputed},
		{JobStatusCancelled, JobStatusApplied},
		{JobStatusDisputed, JobStatusCompleted},
	}
	for _, tc := range denied {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s should be denied", tc.from, tc.to)
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	assert.True(t, JobStatusCompleted.IsTerminal())
	assert.True(t, JobStatusCancelled.IsTerminal())
	assert.True(t, JobStatusDisputed.IsTerminal())

	assert.False(t, JobStatusPosted.IsTerminal())
	assert.False(t, JobStatusApplied.IsTerminal())
	assert.False(t, JobStatusSelected.IsTerminal())
	assert.False(t, JobStatusInProgress.IsTerminal())
	assert.False(t, JobStatusPendingVerification.IsTerminal())
}

func TestJobPartyHelpers(t *testing.T) {
	workerID := uint(7)
	job := Job{PostedBy: 3}

	assert.True(t, job.IsParty(3))
	assert.False(t, job.IsParty(7))
	assert.Zero(t, job.Counterparty(3)) // no worker assigned yet

	job.AssignedTo = &workerID
	assert.True(t, job.IsParty(7))
	assert.False(t, job.IsParty(99))
	assert.Equal(t, uint(7), job.Counterparty(3))
	assert.Equal(t, uint(3), job.Counterparty(7))
	assert.Zero(t, job.Counterparty(99))
}
