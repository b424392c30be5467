package sink

import (
	"context"
	"fmt"
	"time"

	commonerrors "mobile-forms/internal/common/errors"
	commonhttp "mobile-forms/internal/common/http"
	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/profileform"
)

// HTTPSink posts the profile as JSON to an external endpoint. The password is
// forwarded, the confirmation is not.
type HTTPSink struct {
	client *commonhttp.Client
	logger logger.Logger
	now    func() time.Time
}

type httpPayload struct {
	Record
	Password string `json:"password"`
}

type httpAck struct {
	ID string `json:"id"`
}

func NewHTTPSink(url string, timeout time.Duration, log logger.Logger, opts ...commonhttp.Option) *HTTPSink {
	return &HTTPSink{
		client: commonhttp.NewClient(url, timeout, opts...),
		logger: log,
		now:    time.Now,
	}
}

func (s *HTTPSink) Name() string { return "http" }

func (s *HTTPSink) Submit(ctx context.Context, values profileform.FormValues) error {
	payload := httpPayload{
		Record:   newRecord(values, s.now()),
		Password: values.Password,
	}

	var ack httpAck
	if err := s.client.PostJSON(ctx, "", payload, &ack); err != nil {
		return fmt.Errorf("post profile: %w: %w", commonerrors.NewSubmissionSinkFailedError(s.Name(), err), err)
	}

	s.logger.Debug("profile accepted by endpoint", map[string]interface{}{
		"id":       payload.ID,
		"remoteId": ack.ID,
	})
	return nil
}
