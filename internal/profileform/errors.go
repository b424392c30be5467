package profileform

import "errors"

var (
	ErrValidationFailed = errors.New("PROFILE_VALIDATION_FAILED")
	ErrSubmitInProgress = errors.New("SUBMIT_IN_PROGRESS")
	ErrSubmitFailed     = errors.New("SUBMISSION_SINK_FAILED")
	ErrSessionBusy      = errors.New("SESSION_BUSY")
	ErrSessionClosed    = errors.New("SESSION_CLOSED")
	ErrPickInProgress   = errors.New("PICK_IN_PROGRESS")
	ErrPermissionDenied = errors.New("PERMISSION_DENIED")
)
