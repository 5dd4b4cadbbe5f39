package log

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// NewCtx stores the logger in a child context
func NewCtx(ctx context.Context, logger *logrus.Entry) (context.Context, *logrus.Entry) {
	ctx = context.WithValue(ctx, ctxKey{}, logger)

	return ctx, logger.WithContext(ctx)
}

// FromCtx returns the logger stored in ctx or the global logger.
// The entry is bound to ctx itself, which may be a child of the context the logger was stored in.
func FromCtx(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
		return logger.WithContext(ctx)
	}

	return Log().WithContext(ctx)
}

// CtxWithFields adds fields to the logger of ctx, e.g. the request id or the tenant
func CtxWithFields(ctx context.Context, fields logrus.Fields) (context.Context, *logrus.Entry) {
	return NewCtx(ctx, FromCtx(ctx).WithFields(fields))
}
