package logcontext

import (
	"context"
	"log/slog"
)

type ctxKey string

const SlogFields ctxKey = "slog_fields"

// ContextHandler adds the attributes stored with AppendCtx to every record.
type ContextHandler struct {
	slog.Handler
}

func (h ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(SlogFields).([]slog.Attr); ok {
		for _, v := range attrs {
			r.AddAttrs(v)
		}
	}

	return h.Handler.Handle(ctx, r)
}

func (h ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h ContextHandler) WithGroup(name string) slog.Handler {
	return ContextHandler{Handler: h.Handler.WithGroup(name)}
}

// AppendCtx returns a copy of parent carrying attr in addition to any
// attributes already stored.
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if v, ok := parent.Value(SlogFields).([]slog.Attr); ok {
		fields := make([]slog.Attr, 0, len(v)+1)
		fields = append(fields, v...)
		fields = append(fields, attr)
		return context.WithValue(parent, SlogFields, fields)
	}

	return context.WithValue(parent, SlogFields, []slog.Attr{attr})
}

// Attrs returns the attributes stored in ctx.
func Attrs(ctx context.Context) []slog.Attr {
	if v, ok := ctx.Value(SlogFields).([]slog.Attr); ok {
		return v
	}
	return nil
}
