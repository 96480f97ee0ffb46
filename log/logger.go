// Package log provides structured logging for the hardening layer.
//
// Two variants:
//   - Logger: non-sugared zap.Logger for hot paths (gate rejections, pool
//     lifecycle), structured fields only
//   - use Sugar() for printf-style logging on CLI/debug surfaces
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap with a component field so gate, pool and stream log
// lines are distinguishable in aggregate.
type Logger struct {
	zap *zap.Logger
}

// Nop returns a logger that discards everything. Library constructors use
// it when the caller passes nil.
func Nop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// New creates a JSON logger for the named component, writing to stderr.
func New(component string) *Logger {
	return NewWithWriter(component, os.Stderr)
}

// NewWithWriter creates a JSON logger writing to w. Tests pass a buffer.
func NewWithWriter(component string, w io.Writer) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		zapcore.InfoLevel,
	)

	return &Logger{zap: zap.New(core).With(zap.String("component", component))}
}

// Named returns a logger scoped to a sub-component.
func (l *Logger) Named(component string) *Logger {
	return &Logger{zap: l.zap.With(zap.String("component", component))}
}

// Debug logs a debug message with structured fields.
func (l *Logger) Debug(message string, fields ...zap.Field) {
	l.zap.Debug(message, fields...)
}

// Info logs an info message with structured fields.
func (l *Logger) Info(message string, fields ...zap.Field) {
	l.zap.Info(message, fields...)
}

// Warn logs a warning with structured fields.
func (l *Logger) Warn(message string, fields ...zap.Field) {
	l.zap.Warn(message, fields...)
}

// Error logs an error with structured fields.
func (l *Logger) Error(message string, fields ...zap.Field) {
	l.zap.Error(message, fields...)
}

// Sugar returns a printf-style logger for CLI surfaces.
func (l *Logger) Sugar() *zap.SugaredLogger {
	return l.zap.Sugar()
}
