package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts zap.Logger to the Logger interface
type ZapLogger struct {
	logger *zap.Logger
}

// NewZap wraps an existing zap logger
func NewZap(logger *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: logger}
}

// NewZapDevelopment creates a console logger writing to stderr at the given level
func NewZapDevelopment(level zapcore.Level) (*ZapLogger, error) {
	return buildZap(zap.NewDevelopmentConfig(), level)
}

// NewZapProduction creates a JSON logger writing to stderr at the given level
func NewZapProduction(level zapcore.Level) (*ZapLogger, error) {
	return buildZap(zap.NewProductionConfig(), level)
}

func buildZap(cfg zap.Config, level zapcore.Level) (*ZapLogger, error) {
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{logger: logger}, nil
}

// Info logs an info message
func (z *ZapLogger) Info(msg string, fields ...Field) {
	z.logger.Info(msg, convertFields(fields)...)
}

// Error logs an error message
func (z *ZapLogger) Error(msg string, fields ...Field) {
	z.logger.Error(msg, convertFields(fields)...)
}

// Warn logs a warning message
func (z *ZapLogger) Warn(msg string, fields ...Field) {
	z.logger.Warn(msg, convertFields(fields)...)
}

// Debug logs a debug message
func (z *ZapLogger) Debug(msg string, fields ...Field) {
	z.logger.Debug(msg, convertFields(fields)...)
}

// Zap returns the underlying zap logger
func (z *ZapLogger) Zap() *zap.Logger {
	return z.logger
}

// convertFields maps Field values onto typed zap fields where possible
func convertFields(fields []Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		switch v := f.Value.(type) {
		case string:
			zapFields[i] = zap.String(f.Key, v)
		case int:
			zapFields[i] = zap.Int(f.Key, v)
		case bool:
			zapFields[i] = zap.Bool(f.Key, v)
		case time.Duration:
			zapFields[i] = zap.Duration(f.Key, v)
		case error:
			zapFields[i] = zap.NamedError(f.Key, v)
		default:
			zapFields[i] = zap.Any(f.Key, v)
		}
	}
	return zapFields
}
