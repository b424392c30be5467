package sink

import (
	"context"
	"time"

	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/profileform"
)

// LogSink writes the submitted profile to the structured log. Used in
// development and when no backend is configured.
type LogSink struct {
	logger logger.Logger
	now    func() time.Time
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{logger: log, now: time.Now}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Submit(_ context.Context, values profileform.FormValues) error {
	rec := newRecord(values, s.now())
	s.logger.Info("profile received", map[string]interface{}{
		"id":          rec.ID,
		"fullName":    rec.FullName,
		"email":       rec.Email,
		"phone":       values.PhoneValue(),
		"avatarUri":   values.AvatarValue(),
		"acceptTerms": rec.AcceptTerms,
	})
	return nil
}
