// Package logger builds the application's zap logger and attaches request
// scoped fields to it.
package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

// RequestIDKey is the context key holding the inbound request id.
const RequestIDKey ctxKey = "request_id"

// New builds a JSON production logger, or a colored console logger when
// development is true.
func New(development bool) (*zap.Logger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return cfg.Build()
}

// WithRequestID returns a copy of ctx carrying the request id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// FromContext returns log with the request id found in ctx, if any.
func FromContext(ctx context.Context, log *zap.Logger) *zap.Logger {
	if ctx == nil {
		return log
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		return log.With(zap.String(string(RequestIDKey), id))
	}
	return log
}
