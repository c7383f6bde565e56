package logger

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/powledger/powledger/pkg/config"
)

// Factory creates logger instances based on the configuration.
func Factory(cfg config.Logger) (Logger, error) {
	if !cfg.Enabled {
		return NewNoOpLogger(), nil
	}

	// Zap is the only provider for now.
	switch strings.ToLower(cfg.Environment) {
	case "production", "development":
		return NewZapLogger(cfg)
	default:
		return nil, errors.Errorf("unsupported environment for logger: %q", cfg.Environment)
	}
}
