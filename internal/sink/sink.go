// Package sink holds the destinations a valid profile can be submitted to.
// Every sink implements profileform.Sink and reports a short Name used in
// metrics and logs.
package sink

import (
	"errors"
	"time"

	"mobile-forms/internal/profileform"

	"github.com/google/uuid"
)

var (
	ErrUnknownSinkKind   = errors.New("UNKNOWN_SINK_KIND")
	ErrMissingDependency = errors.New("SINK_DEPENDENCY_MISSING")
)

// Sink is a named profileform.Sink.
type Sink interface {
	profileform.Sink
	Name() string
}

// Record is the stored shape of a submitted profile. It never carries the
// plaintext password.
type Record struct {
	ID             string    `json:"id"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Phone          *string   `json:"phone,omitempty"`
	PassportNumber string    `json:"passportNumber"`
	AvatarURI      *string   `json:"avatarUri,omitempty"`
	AcceptTerms    bool      `json:"acceptTerms"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

func newRecord(values profileform.FormValues, now time.Time) Record {
	return Record{
		ID:             uuid.NewString(),
		FullName:       values.FullName,
		Email:          values.Email,
		Phone:          values.Phone,
		PassportNumber: values.PassportNumber,
		AvatarURI:      values.AvatarURI,
		AcceptTerms:    values.AcceptTerms,
		SubmittedAt:    now.UTC(),
	}
}
