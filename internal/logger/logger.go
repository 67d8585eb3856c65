// Package logger wraps zap with context-aware helpers that pick up
// request-scoped fields.
package logger

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey struct{}

// Logger wraps the zap logger
type Logger struct {
	*zap.Logger
}

// New builds a JSON production logger, or a console logger in development
func New(development bool) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if development {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zl, err := cfg.Build()
	if err != nil {
		zl = zap.NewExample()
	}
	return &Logger{Logger: zl}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// WithFields returns a context carrying fields added to every log line
func WithFields(ctx context.Context, fields map[string]interface{}) context.Context {
	merged := fieldsFrom(ctx)
	next := make(map[string]interface{}, len(merged)+len(fields))
	for k, v := range merged {
		next[k] = v
	}
	for k, v := range fields {
		next[k] = v
	}
	return context.WithValue(ctx, ctxKey{}, next)
}

func fieldsFrom(ctx context.Context) map[string]interface{} {
	if ctx == nil {
		return nil
	}
	if f, ok := ctx.Value(ctxKey{}).(map[string]interface{}); ok {
		return f
	}
	return nil
}

// Debug logs a debug message with context
func (l *Logger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.log(ctx, zap.DebugLevel, msg, fields...)
}

// Info logs an info message with context
func (l *Logger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.log(ctx, zap.InfoLevel, msg, fields...)
}

// Warn logs a warning message with context
func (l *Logger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.log(ctx, zap.WarnLevel, msg, fields...)
}

// Error logs an error message with context
func (l *Logger) Error(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	if err != nil {
		fields = append(fields, map[string]interface{}{"error": err.Error()})
	}
	l.log(ctx, zap.ErrorLevel, msg, fields...)
}

// Fatal logs an error message and exits the process
func (l *Logger) Fatal(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	if err != nil {
		fields = append(fields, map[string]interface{}{"error": err.Error()})
	}
	l.log(ctx, zap.FatalLevel, msg, fields...)
}

func (l *Logger) log(ctx context.Context, level zapcore.Level, msg string, fields ...map[string]interface{}) {
	ce := l.Logger.Check(level, msg)
	if ce == nil {
		return
	}

	var zf []zap.Field
	for k, v := range fieldsFrom(ctx) {
		zf = append(zf, zap.Any(k, v))
	}
	for _, m := range fields {
		for k, v := range m {
			zf = append(zf, zap.Any(k, v))
		}
	}
	ce.Write(zf...)
}
