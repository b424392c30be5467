package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	commonerrors "mobile-forms/internal/common/errors"
	"mobile-forms/internal/common/validation"
	"mobile-forms/internal/posts"
	"mobile-forms/internal/profileform"
	"mobile-forms/internal/tasks"
	"mobile-forms/pkg/registry"
)

var (
	ErrSessionNotFound = errors.New("SESSION_NOT_FOUND")
	ErrMalformedBody   = errors.New("INPUT_PARSING_FAILED")
	ErrBadPathParam    = errors.New("INVALID_PATH_PARAMETER")

	errInternal = errors.New("internal error")
)

// schemaError carries the field errors of a request body that failed its schema.
type schemaError struct {
	result *validation.ValidationResult
}

func (e *schemaError) Error() string {
	return "SCHEMA_VALIDATION_FAILED: " + e.result.String()
}

type errorEnvelope struct {
	Error  *commonerrors.StandardError  `json:"error"`
	Fields []validation.ValidationError `json:"fields,omitempty"`
}

var statusBySentinel = []struct {
	err    error
	status int
}{
	{ErrMalformedBody, http.StatusBadRequest},
	{ErrBadPathParam, http.StatusBadRequest},
	{profileform.ErrUnknownField, http.StatusBadRequest},
	{ErrSessionNotFound, http.StatusNotFound},
	{registry.ErrFormNotFound, http.StatusNotFound},
	{tasks.ErrTaskNotFound, http.StatusNotFound},
	{profileform.ErrSubmitInProgress, http.StatusConflict},
	{profileform.ErrSessionBusy, http.StatusConflict},
	{profileform.ErrPickInProgress, http.StatusConflict},
	{posts.ErrCreateInProgress, http.StatusConflict},
	{profileform.ErrSessionClosed, http.StatusGone},
	{profileform.ErrValidationFailed, http.StatusUnprocessableEntity},
	{posts.ErrPostFieldsRequired, http.StatusUnprocessableEntity},
	{tasks.ErrTaskTitleRequired, http.StatusUnprocessableEntity},
	{profileform.ErrSubmitFailed, http.StatusBadGateway},
	{posts.ErrPostsFetchFailed, http.StatusBadGateway},
	{posts.ErrPostCreateFailed, http.StatusBadGateway},
	{posts.ErrCommentsFetchFailed, http.StatusBadGateway},
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// classify picks the HTTP status and the error body for err. The code is the
// matched sentinel; message is what a user should read.
func classify(err error, catalog *profileform.Catalog) (int, *commonerrors.StandardError) {
	var se *schemaError
	if errors.As(err, &se) {
		return http.StatusBadRequest, commonerrors.NewSchemaValidationFailedError(se.result.String())
	}

	status := http.StatusInternalServerError
	code := commonerrors.ErrCodeInternal
	for _, m := range statusBySentinel {
		if errors.Is(err, m.err) {
			status = m.status
			code = commonerrors.ErrorCode(m.err.Error())
			break
		}
	}

	out := &commonerrors.StandardError{
		Code:      code,
		Message:   userMessage(err, status, catalog),
		Details:   err.Error(),
		Retryable: status == http.StatusBadGateway || status == http.StatusConflict,
		Timestamp: time.Now().UTC(),
	}

	var inner *commonerrors.StandardError
	if errors.As(err, &inner) {
		out.Details = inner.Details
		out.Metadata = map[string]interface{}{"cause": inner.Code}
		out.Retryable = out.Retryable && inner.Retryable
	}
	if status == http.StatusInternalServerError {
		out.Details = ""
	}
	return status, out
}

func userMessage(err error, status int, catalog *profileform.Catalog) string {
	switch {
	case errors.Is(err, profileform.ErrSubmitFailed):
		return catalog.Notice(profileform.NoticeSubmitFailed).Body
	case errors.Is(err, profileform.ErrPermissionDenied):
		return catalog.Notice(profileform.NoticePermissionDenied).Body
	case errors.Is(err, posts.ErrPostsFetchFailed):
		return posts.FetchErrorMessage
	case errors.Is(err, posts.ErrPostCreateFailed):
		return posts.CreateErrorMessage
	case errors.Is(err, posts.ErrPostFieldsRequired):
		return posts.FieldsRequiredMessage
	case errors.Is(err, posts.ErrCommentsFetchFailed):
		return posts.CommentsErrorMessage
	}
	return http.StatusText(status)
}

func notFoundBody(path string) *commonerrors.StandardError {
	return commonerrors.NewResourceNotFoundError("route", path)
}
