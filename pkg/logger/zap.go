package logger

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/powledger/powledger/pkg/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is an implementation of Logger using Uber's Zap.
type ZapLogger struct {
	sugaredLogger *zap.SugaredLogger
}

// NewZapLogger creates a new ZapLogger based on the provided configuration.
func NewZapLogger(cfg config.Logger) (*ZapLogger, error) {
	var zapCfg zap.Config
	switch strings.ToLower(cfg.Environment) {
	case "production":
		zapCfg = zap.NewProductionConfig()
	case "development":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, errors.New("invalid environment; must be 'production' or 'development'")
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, errors.Wrap(err, "failure to build zap logger")
	}

	return &ZapLogger{sugaredLogger: logger.Sugar()}, nil
}

// NewZapLoggerFrom wraps an already built zap logger, mostly for tests that
// use zaptest or observer cores.
func NewZapLoggerFrom(l *zap.Logger) *ZapLogger {
	return &ZapLogger{sugaredLogger: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel, nil
	case "info", "":
		return zap.InfoLevel, nil
	case "warn":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, errors.New("invalid log level; must be 'debug', 'info', 'warn', or 'error'")
	}
}

// Debug logs a message at DebugLevel.
func (z *ZapLogger) Debug(msg string, keysAndValues ...any) {
	z.sugaredLogger.Debugw(msg, keysAndValues...)
}

// Info logs a message at InfoLevel.
func (z *ZapLogger) Info(msg string, keysAndValues ...any) {
	z.sugaredLogger.Infow(msg, keysAndValues...)
}

// Warn logs a message at WarnLevel.
func (z *ZapLogger) Warn(msg string, keysAndValues ...any) {
	z.sugaredLogger.Warnw(msg, keysAndValues...)
}

// Error logs a message at ErrorLevel.
func (z *ZapLogger) Error(msg string, keysAndValues ...any) {
	z.sugaredLogger.Errorw(msg, keysAndValues...)
}

func (z *ZapLogger) Fatal(msg string, keysAndValues ...any) {
	z.sugaredLogger.Fatalw(msg, keysAndValues...)
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.sugaredLogger.Sync()
}
