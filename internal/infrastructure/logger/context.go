package logger

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	// LoggerKey carries the request-scoped logger.
	LoggerKey contextKey = "logger"
	// RequestIDKey carries the request id set by the HTTP layer.
	RequestIDKey contextKey = "request_id"
	// OwnerKey carries the resolved board owner (kind:id).
	OwnerKey contextKey = "owner"
)

// WithContext returns a new context with the logger attached.
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context. Code running outside a
// request, or before the logging middleware, gets a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRequestID stores the request id and returns the context with an
// enriched logger attached, so downstream log lines correlate.
func WithRequestID(ctx context.Context, logger *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RequestIDKey, requestID)
	enriched := logger.With(zap.String("request_id", requestID))
	return WithContext(ctx, enriched), enriched
}

// WithOwner stores the resolved board owner and returns the context with
// an enriched logger attached.
func WithOwner(ctx context.Context, logger *zap.Logger, owner string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, OwnerKey, owner)
	enriched := logger.With(zap.String("owner", owner))
	return WithContext(ctx, enriched), enriched
}

// GetRequestID retrieves the request id from context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetOwner retrieves the board owner from context.
func GetOwner(ctx context.Context) string {
	if owner, ok := ctx.Value(OwnerKey).(string); ok {
		return owner
	}
	return ""
}
