package config

import (
	"strings"

	"github.com/pkg/errors"
)

// Logger configures the global logger.
type Logger struct {
	Enabled     bool   `yaml:"enabled"`
	Environment string `yaml:"environment"` // "production" or "development"
	Level       string `yaml:"level"`       // debug, info, warn or error
}

func (l Logger) Validate() error {
	if !l.Enabled {
		return nil
	}
	switch strings.ToLower(l.Environment) {
	case "production", "development":
	default:
		return errors.Errorf("unsupported environment %q", l.Environment)
	}
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.Errorf("unsupported level %q", l.Level)
	}
	return nil
}
