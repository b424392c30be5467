package sink

import (
	"context"
	"time"

	"mobile-forms/internal/common/observability"
	"mobile-forms/internal/profileform"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Instrumented traces every submit call and records its outcome on the
// OpenTelemetry meter.
type Instrumented struct {
	next Sink
	obs  *observability.Observability
}

func NewInstrumented(next Sink, obs *observability.Observability) *Instrumented {
	return &Instrumented{next: next, obs: obs}
}

func (i *Instrumented) Name() string { return i.next.Name() }

func (i *Instrumented) Submit(ctx context.Context, values profileform.FormValues) error {
	ctx, span := i.obs.StartSpan(ctx, "profile.submit",
		attribute.String("sink", i.next.Name()),
		attribute.Bool("profile.has_phone", values.Phone != nil),
	)
	defer span.End()

	start := time.Now()
	err := i.next.Submit(ctx, values)

	outcome := "success"
	if err != nil {
		outcome = "failure"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	i.obs.RecordSubmission(ctx, i.next.Name(), outcome, time.Since(start))
	return err
}
