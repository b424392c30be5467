package sink

import (
	"context"
	"fmt"

	commonerrors "mobile-forms/internal/common/errors"
	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/profileform"
)

type EmailSender interface {
	SendText(ctx context.Context, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) error
}

// Notifying wraps a sink and confirms a successful submission by email and,
// when the profile has a phone, by SMS. Notification failures are logged and
// never turn a stored submission into a failed one.
type Notifying struct {
	next    Sink
	email   EmailSender
	sms     SMSSender
	subject string
	logger  logger.Logger
}

func NewNotifying(next Sink, email EmailSender, sms SMSSender, subject string, log logger.Logger) *Notifying {
	return &Notifying{
		next:    next,
		email:   email,
		sms:     sms,
		subject: subject,
		logger:  log,
	}
}

func (n *Notifying) Name() string { return n.next.Name() }

func (n *Notifying) Submit(ctx context.Context, values profileform.FormValues) error {
	if err := n.next.Submit(ctx, values); err != nil {
		return err
	}

	text := fmt.Sprintf("%s, ваш профиль сохранён.", values.FullName)

	if n.email != nil {
		if err := n.email.SendText(ctx, values.Email, n.subject, text); err != nil {
			n.logger.Warn("confirmation email not sent", map[string]interface{}{
				"error": commonerrors.NewNotificationSendFailedError("email", err),
			})
		}
	}
	if phone := values.PhoneValue(); n.sms != nil && phone != "" {
		if err := n.sms.SendSMS(ctx, phone, text); err != nil {
			n.logger.Warn("confirmation sms not sent", map[string]interface{}{
				"error": commonerrors.NewNotificationSendFailedError("sms", err),
			})
		}
	}
	return nil
}
