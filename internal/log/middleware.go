package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// Middleware creates HTTP middleware that adds a logger to the request context
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), LoggerContextKey, logger)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext extracts a logger from the request context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// StructuredLogger provides domain-specific logging helpers
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogMovementCreated logs a successful submission
func (sl *StructuredLogger) LogMovementCreated(ctx context.Context, id, desc string, amountCents int64, category, kind string, revision uint64) {
	fields := NewFields().
		WithMovement(id, desc, amountCents, category, kind).
		WithOperation(OpSubmit).
		ToSlice()
	fields = append(fields, FieldRevision, revision)

	sl.logger.InfoContext(ctx, "Movement created successfully", fields...)
}

// LogInvalidInput logs a rejected submission at warn level
func (sl *StructuredLogger) LogInvalidInput(ctx context.Context, err error, kind string) {
	fields := NewFields().
		WithError(err).
		WithErrorType(ErrorTypeValidation).
		WithOperation(OpSubmit)
	fields[FieldKind] = kind

	sl.logger.WarnContext(ctx, "Movement rejected", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
