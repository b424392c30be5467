package profileform

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mobile-forms/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu      sync.Mutex
	calls   int
	last    FormValues
	err     error
	entered chan struct{}
	release chan struct{}
}

func (s *recordingSink) Submit(ctx context.Context, values FormValues) error {
	s.mu.Lock()
	s.calls++
	s.last = values
	entered, release := s.entered, s.release
	s.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

func (s *recordingSink) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *recordingSink) Name() string { return "recording" }

type noticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *noticeLog) add(notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *noticeLog) kinds() []NoticeKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []NoticeKind
	for _, x := range n.notices {
		out = append(out, x.Kind)
	}
	return out
}

func newTestSession(t *testing.T, sink Sink) (*Session, *noticeLog) {
	t.Helper()
	notices := &noticeLog{}
	s := NewSession(SessionOptions{
		Sink:     sink,
		Logger:   logger.NewTestLogger(t),
		OnNotice: notices.add,
	})
	return s, notices
}

func fillValid(t *testing.T, s *Session) {
	t.Helper()
	for field, raw := range map[Field]string{
		FieldFullName:        "Иван Иванов",
		FieldEmail:           "a@b.com",
		FieldPhone:           "9991234567",
		FieldPassportNumber:  "1234567890",
		FieldPassword:        "abcd1234",
		FieldConfirmPassword: "abcd1234",
	} {
		_, err := s.Set(field, raw)
		require.NoError(t, err)
	}
	require.NoError(t, s.SetAcceptTerms(true))
}

func TestSession_NewIsEditingAndNotSubmittable(t *testing.T) {
	s, _ := newTestSession(t, &recordingSink{})

	assert.Equal(t, StateEditing, s.State())
	assert.NotEmpty(t, s.ID())
	assert.False(t, s.CanSubmit())
	assert.False(t, s.Errors().Valid)
}

func TestSession_SetMasksAndRevalidates(t *testing.T) {
	s, _ := newTestSession(t, &recordingSink{})

	display, err := s.Set(FieldPhone, "9991234567")
	require.NoError(t, err)
	assert.Equal(t, "+7 (999) 123-45-67", display)
	assert.Equal(t, "+79991234567", s.Values().PhoneValue())
	assert.False(t, s.Errors().Has("phone"))

	display, err = s.Set(FieldPassportNumber, "12345678901234")
	require.NoError(t, err)
	assert.Equal(t, "1234 567890", display)
	assert.Equal(t, "1234 567890", s.Display(FieldPassportNumber))
	assert.Equal(t, "1234567890", s.Values().PassportNumber)

	_, err = s.Set(FieldPhone, "")
	require.NoError(t, err)
	assert.Nil(t, s.Values().Phone)

	_, err = s.Set(FieldPassword, "abc12345")
	require.NoError(t, err)
	_, err = s.Set(FieldConfirmPassword, "abc12346")
	require.NoError(t, err)
	assert.Equal(t, "Пароли не совпадают", s.Errors().Message("confirmPassword"))

	_, err = s.Set(FieldPassword, "abc12346")
	require.NoError(t, err)
	assert.False(t, s.Errors().Has("confirmPassword"), "confirmation must follow the live password")

	_, err = s.Set(FieldAcceptTerms, "true")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = s.Set(Field("nickname"), "x")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestSession_SubmitSuccess(t *testing.T) {
	sink := &recordingSink{}
	s, notices := newTestSession(t, sink)
	fillValid(t, s)
	require.True(t, s.CanSubmit())

	require.NoError(t, s.Submit(context.Background()))

	assert.Equal(t, 1, sink.Calls())
	assert.Equal(t, "+79991234567", sink.last.PhoneValue())
	assert.Equal(t, "1234567890", sink.last.PassportNumber)
	assert.Equal(t, "abcd1234", sink.last.Password)
	assert.True(t, sink.last.AcceptTerms)

	assert.Equal(t, StateSubmitted, s.State())
	assert.Equal(t, FormValues{}, s.Values())
	assert.False(t, s.CanSubmit())
	assert.Equal(t, []NoticeKind{NoticeSubmitted}, notices.kinds())

	assert.ErrorIs(t, s.Submit(context.Background()), ErrSessionClosed)
	_, err := s.Set(FieldEmail, "x@y.ru")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, 1, sink.Calls())
}

func TestSession_SubmitInvalidDoesNotCallSink(t *testing.T) {
	sink := &recordingSink{}
	s, notices := newTestSession(t, sink)
	fillValid(t, s)
	require.NoError(t, s.SetAcceptTerms(false))

	err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.Equal(t, 0, sink.Calls())
	assert.Equal(t, StateEditing, s.State())
	assert.Equal(t, "Нужно принять условия", s.Errors().Message("acceptTerms"))
	assert.Empty(t, notices.kinds())
}

func TestSession_SinkFailureReturnsToEditing(t *testing.T) {
	cause := errors.New("backend unavailable")
	sink := &recordingSink{err: cause}
	s, notices := newTestSession(t, sink)
	fillValid(t, s)
	before := s.Values()

	err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.ErrorIs(t, err, cause)

	assert.Equal(t, StateEditing, s.State())
	assert.Equal(t, before, s.Values())
	assert.True(t, s.CanSubmit())
	assert.Equal(t, []NoticeKind{NoticeSubmitFailed}, notices.kinds())

	sink.mu.Lock()
	sink.err = nil
	sink.mu.Unlock()
	require.NoError(t, s.Submit(context.Background()))
	assert.Equal(t, 2, sink.Calls())
}

func TestSession_SinkPanicIsAFailure(t *testing.T) {
	s, _ := newTestSession(t, SinkFunc(func(context.Context, FormValues) error {
		panic("boom")
	}))
	fillValid(t, s)

	err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitFailed)
	assert.Equal(t, StateEditing, s.State())
	assert.True(t, s.CanSubmit())
}

func TestSession_RefusesReentrantSubmit(t *testing.T) {
	sink := &recordingSink{entered: make(chan struct{}, 1), release: make(chan struct{})}
	s, _ := newTestSession(t, sink)
	fillValid(t, s)

	done := make(chan error, 1)
	go func() { done <- s.Submit(context.Background()) }()
	<-sink.entered

	assert.Equal(t, StateSubmitting, s.State())
	for i := 0; i < 10; i++ {
		assert.ErrorIs(t, s.Submit(context.Background()), ErrSubmitInProgress)
	}
	_, err := s.Set(FieldEmail, "other@b.com")
	assert.ErrorIs(t, err, ErrSessionBusy)
	assert.ErrorIs(t, s.SetAcceptTerms(false), ErrSessionBusy)

	close(sink.release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, sink.Calls())
}

func TestSession_ConcurrentSubmitsCallSinkOnce(t *testing.T) {
	sink := &recordingSink{}
	slow := SinkFunc(func(ctx context.Context, v FormValues) error {
		time.Sleep(20 * time.Millisecond)
		return sink.Submit(ctx, v)
	})
	s, _ := newTestSession(t, slow)
	fillValid(t, s)

	var ok, refused int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := s.Submit(context.Background())
			switch {
			case err == nil:
				atomic.AddInt32(&ok, 1)
			case errors.Is(err, ErrSubmitInProgress), errors.Is(err, ErrSessionClosed):
				atomic.AddInt32(&refused, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), ok)
	assert.Equal(t, int32(31), refused)
	assert.Equal(t, 1, sink.Calls())
}

func TestSession_AbandonDuringSubmitDiscardsResult(t *testing.T) {
	sink := &recordingSink{entered: make(chan struct{}, 1), release: make(chan struct{})}
	s, notices := newTestSession(t, sink)
	fillValid(t, s)

	done := make(chan error, 1)
	go func() { done <- s.Submit(context.Background()) }()
	<-sink.entered

	s.Abandon()
	close(sink.release)

	assert.ErrorIs(t, <-done, ErrSessionClosed)
	assert.Equal(t, StateAbandoned, s.State())
	assert.Equal(t, FormValues{}, s.Values())
	assert.Empty(t, notices.kinds())
}

func TestSession_SubmitPassesContext(t *testing.T) {
	type key struct{}
	var got interface{}
	s, _ := newTestSession(t, SinkFunc(func(ctx context.Context, _ FormValues) error {
		got = ctx.Value(key{})
		return nil
	}))
	fillValid(t, s)

	ctx := context.WithValue(context.Background(), key{}, "request-42")
	require.NoError(t, s.Submit(ctx))
	assert.Equal(t, "request-42", got)
}

func TestSession_AbandonIsIdempotent(t *testing.T) {
	s, _ := newTestSession(t, &recordingSink{})
	s.Abandon()
	s.Abandon()
	assert.Equal(t, StateAbandoned, s.State())
	assert.ErrorIs(t, s.Submit(context.Background()), ErrSessionClosed)
}

func TestSession_Snapshot(t *testing.T) {
	s, _ := newTestSession(t, &recordingSink{})
	fillValid(t, s)

	snap := s.Snapshot()
	assert.Equal(t, s.ID(), snap.ID)
	assert.Equal(t, "editing", snap.State)
	assert.True(t, snap.CanSubmit)
	assert.True(t, snap.AcceptTerms)
	assert.Empty(t, snap.Errors)
	assert.Equal(t, "+7 (999) 123-45-67", snap.Display[FieldPhone])
	assert.Equal(t, "1234 567890", snap.Display[FieldPassportNumber])
	_, hasPassword := snap.Display[FieldPassword]
	assert.False(t, hasPassword)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "submitting", StateSubmitting.String())
	assert.Equal(t, "state(9)", State(9).String())
}
