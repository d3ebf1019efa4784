package logging

import (
	"context"

	"go.uber.org/zap"
)

type contextKey struct{}

// WithLogger stores a logger in the context.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext retrieves a logger from the context.
// If no logger is found, it returns a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := FromContextOK(ctx); ok {
		return logger
	}
	return zap.NewNop()
}

// FromContextOK retrieves a logger from the context and reports whether one
// was attached.
func FromContextOK(ctx context.Context) (*zap.Logger, bool) {
	logger, ok := ctx.Value(contextKey{}).(*zap.Logger)
	return logger, ok && logger != nil
}

// AddFields returns a context whose logger carries the extra fields.
func AddFields(ctx context.Context, fields ...zap.Field) context.Context {
	return WithLogger(ctx, FromContext(ctx).With(fields...))
}

// Debug logs a debug message using the logger from context.
func Debug(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Debug(msg, fields...)
}

// Warn logs a warning message using the logger from context.
func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Warn(msg, fields...)
}

// Error logs an error message using the logger from context.
func Error(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Error(msg, fields...)
}
