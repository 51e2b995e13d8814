package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel/trace"
)

// TracingHandler adds the trace_id and span_id of the active span to every record.
type TracingHandler struct {
	handler slog.Handler
}

// WrapHandler decorates h with trace context.
func WrapHandler(h slog.Handler) *TracingHandler {
	return &TracingHandler{handler: h}
}

// NewTracingHandler writes JSON records with trace context to w.
func NewTracingHandler(w io.Writer, opts *slog.HandlerOptions) *TracingHandler {
	return WrapHandler(slog.NewJSONHandler(w, opts))
}

// Enabled implements slog.Handler
func (h *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	spanCtx := trace.SpanContextFromContext(ctx)
	if spanCtx.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", spanCtx.TraceID().String()),
			slog.String("span_id", spanCtx.SpanID().String()),
		)
	}
	return h.handler.Handle(ctx, record)
}

// WithAttrs implements slog.Handler
func (h *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return WrapHandler(h.handler.WithAttrs(attrs))
}

// WithGroup implements slog.Handler
func (h *TracingHandler) WithGroup(name string) slog.Handler {
	return WrapHandler(h.handler.WithGroup(name))
}

// Logger is the global structured logger
var Logger *slog.Logger

// InitLogger installs a JSON logger on stdout as the slog default.
func InitLogger(serviceName, environment, level string) {
	handler := NewTracingHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})

	Logger = slog.New(handler).With(
		slog.String("service", serviceName),
		slog.String("environment", environment),
	)

	slog.SetDefault(Logger)
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
