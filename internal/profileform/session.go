package profileform

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/common/metrics"
	"mobile-forms/internal/common/validation"

	"github.com/google/uuid"
)

// Sink receives canonical values of a valid form. Only success or failure is interpreted.
type Sink interface {
	Submit(ctx context.Context, values FormValues) error
}

type SinkFunc func(ctx context.Context, values FormValues) error

func (f SinkFunc) Submit(ctx context.Context, values FormValues) error {
	return f(ctx, values)
}

type State int

const (
	StateEditing State = iota
	StateSubmitting
	StateSubmitted
	StateAbandoned
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateAbandoned:
		return "abandoned"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type SessionOptions struct {
	ID        string
	Sink      Sink
	SinkName  string
	Validator *Validator
	Logger    logger.Logger
	OnNotice  func(Notice)
}

// Session is one user's pass through the profile form. Field edits are
// accepted only while Editing; Submit moves to Submitting for the duration of
// the sink call and ends in Submitted on success.
type Session struct {
	mu sync.Mutex

	id        string
	sink      Sink
	sinkName  string
	validator *Validator
	logger    logger.Logger
	onNotice  func(Notice)

	state   State
	picking bool
	values  FormValues
	result  *validation.ValidationResult
	touched time.Time
}

func NewSession(opts SessionOptions) *Session {
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if opts.Validator == nil {
		opts.Validator = defaultValidator
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.SinkName == "" {
		opts.SinkName = "custom"
		if named, ok := opts.Sink.(interface{ Name() string }); ok {
			opts.SinkName = named.Name()
		}
	}

	s := &Session{
		id:        opts.ID,
		sink:      opts.Sink,
		sinkName:  opts.SinkName,
		validator: opts.Validator,
		logger:    opts.Logger.WithFields(map[string]interface{}{"sessionId": opts.ID}),
		onNotice:  opts.OnNotice,
		state:     StateEditing,
		touched:   time.Now(),
	}
	s.revalidateLocked()
	metrics.ProfileSessionsActive.Inc()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastActivity is the time of the last accepted edit or state change.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Set applies one edit of a text field and returns what the input should now display.
func (s *Session) Set(field Field, raw string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editableLocked(); err != nil {
		return "", err
	}

	var display string
	switch field {
	case FieldFullName:
		s.values.FullName, display = raw, raw
	case FieldEmail:
		s.values.Email, display = raw, raw
	case FieldPhone:
		var canonical string
		display, canonical = PhoneOnChange(raw)
		s.values.Phone = optional(canonical)
	case FieldPassportNumber:
		display, s.values.PassportNumber = PassportOnChange(raw)
	case FieldPassword:
		s.values.Password, display = raw, raw
	case FieldConfirmPassword:
		s.values.ConfirmPassword, display = raw, raw
	case FieldAvatarURI:
		s.values.AvatarURI, display = optional(raw), raw
	case FieldAcceptTerms:
		return "", fmt.Errorf("%w: %s is not a text field", ErrUnknownField, field)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	s.revalidateLocked()
	return display, nil
}

func (s *Session) SetAcceptTerms(accepted bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.editableLocked(); err != nil {
		return err
	}
	s.values.AcceptTerms = accepted
	s.revalidateLocked()
	return nil
}

// Display renders the stored value of field the way the input shows it.
func (s *Session) Display(field Field) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return displayOf(s.values, field)
}

func displayOf(v FormValues, field Field) string {
	switch field {
	case FieldFullName:
		return v.FullName
	case FieldEmail:
		return v.Email
	case FieldPhone:
		if p := v.PhoneValue(); p != "" {
			return FormatPhone(p)
		}
		return ""
	case FieldPassportNumber:
		return FormatPassport(v.PassportNumber)
	case FieldPassword:
		return v.Password
	case FieldConfirmPassword:
		return v.ConfirmPassword
	case FieldAvatarURI:
		return v.AvatarValue()
	case FieldAcceptTerms:
		return fmt.Sprintf("%t", v.AcceptTerms)
	}
	return ""
}

// Values returns a copy of the stored (canonical) values.
func (s *Session) Values() FormValues {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values.Canonical()
}

// Errors returns the result of the latest validation pass.
func (s *Session) Errors() *validation.ValidationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyResult(s.result)
}

func (s *Session) CanSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateEditing && s.result.Valid
}

// Submit validates the snapshot and hands canonical values to the sink.
// A second call while the first is outstanding returns ErrSubmitInProgress.
// On sink failure the session returns to Editing with values intact.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateSubmitting:
		s.mu.Unlock()
		return ErrSubmitInProgress
	case StateSubmitted, StateAbandoned:
		s.mu.Unlock()
		return ErrSessionClosed
	}

	s.revalidateLocked()
	if !s.result.Valid {
		metrics.ProfileValidations.WithLabelValues("invalid").Inc()
		count := len(s.result.Errors)
		s.mu.Unlock()
		return fmt.Errorf("%w: %d invalid field(s)", ErrValidationFailed, count)
	}
	metrics.ProfileValidations.WithLabelValues("valid").Inc()

	if s.sink == nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: no sink configured", ErrSubmitFailed)
	}

	s.state = StateSubmitting
	s.touched = time.Now()
	payload := s.values.Canonical()
	s.mu.Unlock()

	s.logger.Info("submitting profile", map[string]interface{}{"sink": s.sinkName})
	start := time.Now()
	sinkErr := s.callSink(ctx, payload)
	metrics.ProfileSubmitDuration.WithLabelValues(s.sinkName).Observe(time.Since(start).Seconds())

	s.mu.Lock()
	if s.state == StateAbandoned {
		s.mu.Unlock()
		s.logger.Info("session abandoned during submit, discarding result", map[string]interface{}{
			"sinkError": sinkErr,
		})
		return ErrSessionClosed
	}

	if sinkErr != nil {
		s.state = StateEditing
		s.touched = time.Now()
		s.mu.Unlock()

		metrics.ProfileSubmissions.WithLabelValues(s.sinkName, "failure").Inc()
		s.logger.Warn("profile submission failed", map[string]interface{}{
			"sink":  s.sinkName,
			"error": sinkErr,
		})
		s.notify(NoticeSubmitFailed)
		return fmt.Errorf("%w: %w", ErrSubmitFailed, sinkErr)
	}

	s.state = StateSubmitted
	s.touched = time.Now()
	s.values = FormValues{}
	s.revalidateLocked()
	s.mu.Unlock()

	metrics.ProfileSubmissions.WithLabelValues(s.sinkName, "success").Inc()
	metrics.ProfileSessionsActive.Dec()
	s.logger.Info("profile submitted", map[string]interface{}{"sink": s.sinkName})
	s.notify(NoticeSubmitted)
	return nil
}

// Abandon discards the session. An outstanding sink call or image pick keeps
// running but its result is ignored.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitted || s.state == StateAbandoned {
		return
	}
	s.state = StateAbandoned
	s.touched = time.Now()
	s.values = FormValues{}
	metrics.ProfileSessionsActive.Dec()
	s.logger.Info("session abandoned", nil)
}

func (s *Session) callSink(ctx context.Context, values FormValues) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()
	return s.sink.Submit(ctx, values)
}

func (s *Session) editableLocked() error {
	switch s.state {
	case StateEditing:
		return nil
	case StateSubmitting:
		return ErrSessionBusy
	default:
		return ErrSessionClosed
	}
}

func (s *Session) revalidateLocked() {
	s.result = s.validator.Validate(s.values)
	s.touched = time.Now()
}

func (s *Session) notify(kind NoticeKind) {
	if s.onNotice != nil {
		s.onNotice(s.validator.Catalog().Notice(kind))
	}
}

func copyResult(r *validation.ValidationResult) *validation.ValidationResult {
	out := &validation.ValidationResult{Valid: r.Valid}
	if len(r.Errors) > 0 {
		out.Errors = append([]validation.ValidationError(nil), r.Errors...)
	}
	return out
}

// Snapshot is a read-only view of the session for transport layers.
type Snapshot struct {
	ID          string                       `json:"id"`
	State       string                       `json:"state"`
	Display     map[Field]string             `json:"display"`
	AcceptTerms bool                         `json:"acceptTerms"`
	Errors      []validation.ValidationError `json:"errors"`
	CanSubmit   bool                         `json:"canSubmit"`
}

// Snapshot omits both password fields from Display.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	display := map[Field]string{
		FieldFullName:       displayOf(s.values, FieldFullName),
		FieldEmail:          displayOf(s.values, FieldEmail),
		FieldPhone:          displayOf(s.values, FieldPhone),
		FieldPassportNumber: displayOf(s.values, FieldPassportNumber),
		FieldAvatarURI:      displayOf(s.values, FieldAvatarURI),
	}
	errs := copyResult(s.result).Errors
	if errs == nil {
		errs = []validation.ValidationError{}
	}
	return Snapshot{
		ID:          s.id,
		State:       s.state.String(),
		Display:     display,
		AcceptTerms: s.values.AcceptTerms,
		Errors:      errs,
		CanSubmit:   s.state == StateEditing && s.result.Valid,
	}
}
