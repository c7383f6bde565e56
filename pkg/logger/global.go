package logger

import (
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/powledger/powledger/pkg/config"
)

// Global logger instance and mutex for thread-safe operations
var (
	globalLogger Logger
	mu           sync.RWMutex
)

// SetGlobalLogger sets the global logger instance.
// It should be called once during application initialization.
func SetGlobalLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger = l
}

// G retrieves the global logger instance.
// Returns a no-op logger if no global logger is set.
func G() Logger {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger != nil {
		return globalLogger
	}
	return NewNoOpLogger()
}

// InitializeGlobalLogger initializes the global logger based on the provided configuration.
// It should be called once during application startup.
func InitializeGlobalLogger(cfg config.Logger) (Logger, error) {
	l, err := Factory(cfg)
	if err != nil {
		return nil, err
	}
	SetGlobalLogger(l)
	return l, nil
}

// Sync flushes any buffered log entries.
// It should be called before application exit to ensure all logs are written.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if zapLogger, ok := globalLogger.(*ZapLogger); ok {
		if err := zapLogger.Sync(); err != nil {
			// Syncing stderr/stdout returns EINVAL on some platforms; there is
			// nothing buffered to lose in that case.
			if errors.Is(err, syscall.EINVAL) {
				return nil
			}
			return err
		}
	}
	return nil
}
