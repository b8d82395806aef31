package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
)

// StageEventKind is the lifecycle point a StageEvent reports.
type StageEventKind string

const (
	StageStarted   StageEventKind = "start"
	StageSucceeded StageEventKind = "success"
	StageFailed    StageEventKind = "fail"
)

// StageEvent captures one pipeline stage transition.
type StageEvent struct {
	PlanID   string
	Stage    app.Stage
	Kind     StageEventKind
	Duration time.Duration
	Fields   map[string]any
	Err      error
}

// StageObserver receives pipeline stage events.
type StageObserver interface {
	ObserveStage(ctx context.Context, event StageEvent)
}

// NoopStageObserver ignores all events.
type NoopStageObserver struct{}

func (NoopStageObserver) ObserveStage(context.Context, StageEvent) {}

type logStageObserver struct {
	logger *slog.Logger
}

// NewLogStageObserver writes stage events as pipeline_stage records.
func NewLogStageObserver(logger *slog.Logger) StageObserver {
	if logger == nil {
		return NoopStageObserver{}
	}
	return &logStageObserver{logger: logger}
}

func (o *logStageObserver) ObserveStage(ctx context.Context, event StageEvent) {
	attrs := make([]any, 0, 10+len(event.Fields)*2)
	attrs = append(attrs,
		"plan_id", event.PlanID,
		"stage", string(event.Stage),
		"event", string(event.Kind),
	)
	if event.Kind != StageStarted {
		attrs = append(attrs, "duration_ms", event.Duration.Milliseconds())
	}
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	switch {
	case event.Err != nil:
		attrs = append(attrs, "error_kind", string(app.KindOf(event.Err)), "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "pipeline_stage", attrs...)
	case event.Kind == StageStarted:
		o.logger.DebugContext(ctx, "pipeline_stage", attrs...)
	default:
		o.logger.InfoContext(ctx, "pipeline_stage", attrs...)
	}
}

// ErrorReporter forwards failures to an external error tracker.
type ErrorReporter interface {
	Report(ctx context.Context, err error, tags map[string]string)
}

type reportingStageObserver struct {
	reporter ErrorReporter
}

// NewReportingStageObserver reports failed stages to reporter. Canceled
// runs are not reported.
func NewReportingStageObserver(reporter ErrorReporter) StageObserver {
	if reporter == nil {
		return NoopStageObserver{}
	}
	return &reportingStageObserver{reporter: reporter}
}

func (o *reportingStageObserver) ObserveStage(ctx context.Context, event StageEvent) {
	if event.Kind != StageFailed || event.Err == nil || app.IsKind(event.Err, app.ErrCanceled) {
		return
	}
	o.reporter.Report(ctx, event.Err, map[string]string{
		"stage":      string(event.Stage),
		"error_kind": string(app.KindOf(event.Err)),
		"plan_id":    event.PlanID,
	})
}

type multiStageObserver []StageObserver

// MultiStageObserver fans events out to every non-nil observer.
func MultiStageObserver(observers ...StageObserver) StageObserver {
	var out multiStageObserver
	for _, obs := range observers {
		if obs != nil {
			out = append(out, obs)
		}
	}
	switch len(out) {
	case 0:
		return NoopStageObserver{}
	case 1:
		return out[0]
	}
	return out
}

func (m multiStageObserver) ObserveStage(ctx context.Context, event StageEvent) {
	for _, obs := range m {
		obs.ObserveStage(ctx, event)
	}
}
