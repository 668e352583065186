package services

import (
	"errors"
)

// Error kinds returned by the service layer. Handlers map each kind to a
// distinct HTTP status; none of them is ever retried automatically.
var (
	// ErrPermissionDenied means the actor has the wrong role or is not the
	// right party for the operation.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrPreconditionFailed means the job, application or trust record is not
	// in the state the operation requires. Callers must re-fetch current state.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrNotFound means a referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateApplication means the worker already applied to this job.
	ErrDuplicateApplication = errors.New("already applied to this job")

	// ErrUnknownViolationType is a configuration error, fatal to the calling
	// operation.
	ErrUnknownViolationType = errors.New("unknown violation type")

	// ErrInsufficientBalance means a debit would drive the balance negative.
	ErrInsufficientBalance = errors.New("insufficient credit balance")

	// ErrInvalidInput means a caller-supplied value fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
