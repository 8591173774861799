package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a record for filtering, e.g. "frame_send_failed".
	FieldEventType = "event_type"
	// FieldErrorHint carries the next step a user should take.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldInvocationID identifies one client run or one stub-server connection.
	FieldInvocationID = "invocation_id"
	// FieldSocket is the unix socket path involved in a record.
	FieldSocket = "socket"
)

// invocationHandler wraps another handler to inject invocation_id into all records.
type invocationHandler struct {
	base slog.Handler
	id   string
}

func newInvocationHandler(base slog.Handler, id string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &invocationHandler{base: base, id: id}
}

func (h *invocationHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *invocationHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(slog.String(FieldInvocationID, h.id))
	return h.base.Handle(ctx, record)
}

func (h *invocationHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &invocationHandler{base: h.base.WithAttrs(attrs), id: h.id}
}

func (h *invocationHandler) WithGroup(name string) slog.Handler {
	return &invocationHandler{base: h.base.WithGroup(name), id: h.id}
}

// WithInvocationID returns a logger that stamps every record with id.
func WithInvocationID(logger *slog.Logger, id string) *slog.Logger {
	if logger == nil {
		return NewNop()
	}
	if id == "" {
		return logger
	}
	return slog.New(newInvocationHandler(logger.Handler(), id))
}
