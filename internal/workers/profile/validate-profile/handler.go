// Package validateprofile runs the profile rule set as a Zeebe job so a BPMN
// process can gate on a submitted profile.
package validateprofile

import (
	"context"
	"encoding/json"
	"time"

	commonerrors "mobile-forms/internal/common/errors"
	"mobile-forms/internal/common/logger"
	"mobile-forms/internal/common/metrics"
	"mobile-forms/internal/common/observability"
	"mobile-forms/internal/common/validation"
	"mobile-forms/internal/profileform"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "profile.form.validate"
	// WorkerName keys the worker's entry under workers in the config.
	WorkerName = "validate-profile"
)

type Handler struct {
	config       *Config
	validator    *profileform.Validator
	errorHandler *commonerrors.ErrorHandler
	obs          *observability.Observability
	logger       logger.Logger
}

// NewHandler builds the job handler. obs may be nil.
func NewHandler(cfg *Config, log logger.Logger, obs *observability.Observability) *Handler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Handler{
		config:       cfg,
		obs:          obs,
		validator:    profileform.NewValidator(profileform.NewCatalog(cfg.Locale)),
		errorHandler: commonerrors.NewErrorHandler(log),
		logger:       log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	input, err := h.parseInput(job)
	if err != nil {
		stdErr := commonerrors.Normalize(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.obs.RecordJobProcessed(ctx, "failed")
		h.errorHandler.HandleJobError(ctx, client, job, stdErr)
		return
	}

	output := h.execute(ctx, input)

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	elapsed := time.Since(start)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(elapsed.Seconds())
	h.obs.RecordJobProcessed(ctx, "completed")
	h.obs.RecordJobDuration(ctx, elapsed, "completed")
}

// parseInput checks the job variables against the schema before decoding them.
func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	raw := []byte(job.Variables)

	res, err := variablesSchema.ValidateJSON(raw)
	if err != nil {
		return nil, commonerrors.NewInputParsingFailedError(err)
	}
	if !res.Valid {
		return nil, commonerrors.NewSchemaValidationFailedError(res.String())
	}

	var input Input
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, commonerrors.NewInputParsingFailedError(err)
	}
	return &input, nil
}

// execute never fails: an invalid profile is a normal outcome for the process
// to branch on.
func (h *Handler) execute(_ context.Context, input *Input) *Output {
	v := h.validator
	if input.Locale != "" {
		v = v.WithCatalog(profileform.NewCatalog(input.Locale))
	}

	res := v.Validate(input.Profile)
	outcome := "valid"
	if !res.Valid {
		outcome = "invalid"
	}
	metrics.ProfileValidations.WithLabelValues(outcome).Inc()

	errs := res.Errors
	if errs == nil {
		errs = []validation.ValidationError{}
	}

	h.logger.Info("validation completed", map[string]interface{}{
		"isValid":    res.Valid,
		"errorCount": len(errs),
	})

	return &Output{
		IsValid:          res.Valid,
		ValidationErrors: errs,
		CanonicalProfile: newCanonicalProfile(input.Profile),
	}
}
