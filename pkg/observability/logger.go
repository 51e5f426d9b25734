package observability

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
)

// TracingHandler wraps an slog.Handler, injecting the active span's trace
// and span IDs into every record and pre-attaching service/environment
// attributes to every logger built on top of it.
type TracingHandler struct {
	next slog.Handler
}

// NewTracingHandler returns a handler that decorates next with
// service/env attributes and per-record trace/span IDs.
func NewTracingHandler(next slog.Handler, service, env string) *TracingHandler {
	return &TracingHandler{next: next.WithAttrs([]slog.Attr{
		slog.String("service", service),
		slog.String("env", env),
	})}
}

func (h *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", span.TraceID().String()),
			slog.String("span_id", span.SpanID().String()),
		)
	}

	return h.next.Handle(ctx, record)
}

func (h *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{next: h.next.WithAttrs(attrs)}
}

func (h *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{next: h.next.WithGroup(name)}
}

func buildLogger(cfg Config) (*slog.Logger, error) {
	level, err := parseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var base slog.Handler
	if cfg.LogJSON {
		base = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		base = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(NewTracingHandler(base, cfg.ServiceName, cfg.Environment)), nil
}
