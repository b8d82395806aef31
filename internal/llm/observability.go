package llm

import (
	"io"
	"log/slog"
)

// CallEvent records metadata about a single provider invocation.
type CallEvent struct {
	Task      TaskType // empty for embedding calls
	Op        string   // "generate" or "embed"
	Model     string
	LatencyMs int64
	Inputs    int
	Success   bool
	ErrorCode string
}

// Observer receives events about provider calls for logging and metrics.
type Observer interface {
	OnCallComplete(event CallEvent)
}

// LogObserver writes call events as structured log records.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates an Observer that logs events to w.
func NewLogObserver(w io.Writer) *LogObserver {
	return &LogObserver{logger: slog.New(slog.NewTextHandler(w, nil))}
}

// NewSlogObserver creates an Observer on top of an existing logger.
func NewSlogObserver(l *slog.Logger) *LogObserver {
	return &LogObserver{logger: l}
}

func (o *LogObserver) OnCallComplete(event CallEvent) {
	attrs := []any{
		"op", event.Op,
		"model", event.Model,
		"latency_ms", event.LatencyMs,
		"inputs", event.Inputs,
	}
	if event.Task != "" {
		attrs = append(attrs, "task", string(event.Task))
	}
	if !event.Success {
		attrs = append(attrs, "error_code", event.ErrorCode)
		o.logger.Warn("llm_call", attrs...)
		return
	}
	o.logger.Info("llm_call", attrs...)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(CallEvent) {}
