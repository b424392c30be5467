// Package errors provides the structured error model shared by the HTTP API and the Zeebe worker.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInputParsingFailed      ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeSchemaValidationFailed  ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrCodeProfileValidationFailed ErrorCode = "PROFILE_VALIDATION_FAILED"
	ErrCodeSubmitInProgress        ErrorCode = "SUBMIT_IN_PROGRESS"
	ErrCodeSessionBusy             ErrorCode = "SESSION_BUSY"
	ErrCodeSessionClosed           ErrorCode = "SESSION_CLOSED"
	ErrCodeSessionNotFound         ErrorCode = "SESSION_NOT_FOUND"
	ErrCodePermissionDenied        ErrorCode = "PERMISSION_DENIED"
	ErrCodeSubmissionSinkFailed    ErrorCode = "SUBMISSION_SINK_FAILED"
	ErrCodeDatabaseInsertFailed    ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeSearchIndexFailed       ErrorCode = "SEARCH_INDEX_FAILED"
	ErrCodeProcessStartFailed      ErrorCode = "PROCESS_START_FAILED"
	ErrCodeNotificationSendFailed  ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodePostsFetchFailed        ErrorCode = "POSTS_FETCH_FAILED"
	ErrCodePostCreateFailed        ErrorCode = "POST_CREATE_FAILED"
	ErrCodeResourceNotFound        ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeInternal                ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError is thrown back to the workflow engine when a job cannot complete.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func NewInputParsingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInputParsingFailed,
		Message:   "Failed to parse input",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewSchemaValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaValidationFailed,
		Message:   "Input does not match the expected shape",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewProfileValidationFailedError(fields map[string]string) *StandardError {
	metadata := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		metadata[k] = v
	}
	return &StandardError{
		Code:      ErrCodeProfileValidationFailed,
		Message:   "Profile form has invalid fields",
		Details:   fmt.Sprintf("%d invalid field(s)", len(fields)),
		Retryable: false,
		Metadata:  metadata,
		Timestamp: time.Now().UTC(),
	}
}

func NewSubmissionSinkFailedError(sink string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSubmissionSinkFailed,
		Message:   fmt.Sprintf("Submission sink '%s' failed", sink),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewSearchIndexFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchIndexFailed,
		Message:   "Search index operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewProcessStartFailedError(err error, retryable bool) *StandardError {
	return &StandardError{
		Code:      ErrCodeProcessStartFailed,
		Message:   "Failed to start workflow process",
		Details:   err.Error(),
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   fmt.Sprintf("Failed to send %s notification", channel),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewPostsFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePostsFetchFailed,
		Message:   "Failed to load posts",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewPostCreateFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePostCreateFailed,
		Message:   "Failed to create post",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(resource, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   fmt.Sprintf("%s not found", resource),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. BPMN mapping & retry policy
// ==========================

var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInputParsingFailed:      "PARSE_ERROR",
	ErrCodeSchemaValidationFailed:  "SCHEMA_VALIDATION_FAILED",
	ErrCodeProfileValidationFailed: "PROFILE_VALIDATION_FAILED",
	ErrCodeSubmissionSinkFailed:    "SUBMISSION_SINK_FAILED",
	ErrCodeDatabaseInsertFailed:    "DATABASE_INSERT_FAILED",
	ErrCodeSearchIndexFailed:       "SEARCH_INDEX_FAILED",
	ErrCodeProcessStartFailed:      "PROCESS_START_FAILED",
	ErrCodeNotificationSendFailed:  "NOTIFICATION_SEND_FAILED",
}

func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeSubmissionSinkFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeSearchIndexFailed,
		ErrCodeProcessStartFailed,
		ErrCodeNotificationSendFailed,
		ErrCodePostsFetchFailed:
		return 3

	case ErrCodePostCreateFailed:
		return 1

	default:
		return 0 // business errors
	}
}

func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "SUBMIT_IN_PROGRESS"):
		return "SESSION"
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "POST"):
		return "POSTS"
	case strings.Contains(codeStr, "SINK") || strings.Contains(codeStr, "PROCESS"):
		return "SUBMISSION"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSING"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
