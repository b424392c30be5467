package sink

import (
	"context"
	"fmt"
	"time"

	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/profileform"
)

// ProcessStarter is the part of the Zeebe client the sink needs.
// *camunda.Client satisfies it.
type ProcessStarter interface {
	StartProcess(ctx context.Context, processID string, variables interface{}) (int64, error)
}

// ZeebeSink starts one onboarding process instance per submission. The
// profile travels as process variables without any password field.
type ZeebeSink struct {
	starter   ProcessStarter
	processID string
	logger    logger.Logger
	now       func() time.Time
}

type processVariables struct {
	Profile Record `json:"profile"`
}

func NewZeebeSink(starter ProcessStarter, processID string, log logger.Logger) *ZeebeSink {
	return &ZeebeSink{
		starter:   starter,
		processID: processID,
		logger:    log,
		now:       time.Now,
	}
}

func (s *ZeebeSink) Name() string { return "zeebe" }

func (s *ZeebeSink) Submit(ctx context.Context, values profileform.FormValues) error {
	rec := newRecord(values, s.now())

	key, err := s.starter.StartProcess(ctx, s.processID, processVariables{Profile: rec})
	if err != nil {
		return fmt.Errorf("start process %s: %w", s.processID, err)
	}

	s.logger.Info("onboarding process started", map[string]interface{}{
		"id":                 rec.ID,
		"processId":          s.processID,
		"processInstanceKey": key,
	})
	return nil
}
