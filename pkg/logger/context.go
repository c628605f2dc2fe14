package logger

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With stores a request-scoped logger carrying the extra fields in the
// context. Later handlers retrieve it with From so trace fields follow
// the request.
func With(ctx context.Context, fields ...any) context.Context {
	return context.WithValue(ctx, ctxKey{}, From(ctx).With(fields...))
}

// From returns the request-scoped logger, falling back to the process
// logger when none was attached.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return LoggerWrapper()
}
