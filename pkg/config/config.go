package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var global *Config

// Config represents the overall application configuration: logging, the
// ledger itself, export settings and observability.
type Config struct {
	// Logger holds the configuration for the logging system, including log level and environment.
	Logger Logger `yaml:"logger"`

	// Chain holds the proof-of-work and genesis settings of the ledger.
	Chain Chain `yaml:"chain"`

	// Export controls where and how chains are written for inspection.
	Export Export `yaml:"export"`

	// Observability holds all configurations related to metrics and tracing.
	Observability Observability `yaml:"observability"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Logger: Logger{
			Enabled:     true,
			Environment: "development",
			Level:       "info",
		},
		Chain: Chain{
			Difficulty: DefaultDifficulty,
		},
		Export: Export{
			Path: "./chain.json",
		},
	}
}

// Validate checks the integrity of the loaded configuration.
func (c Config) Validate() error {
	if err := c.Logger.Validate(); err != nil {
		return errors.Wrap(err, "logger")
	}
	if err := c.Chain.Validate(); err != nil {
		return errors.Wrap(err, "chain")
	}
	return nil
}

// LoadConfig loads the configuration from a YAML file into the Config struct.
// Fields missing from the file keep the values from Default().
//
// Example usage:
//
//	config, err := LoadConfig("/path/to/config.yaml")
//	if err != nil {
//	    log.Fatalf("Failed to load config: %v", err)
//	}
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	rawConfig := Default()
	if err := yaml.Unmarshal(data, rawConfig); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal yaml")
	}

	if err := rawConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return rawConfig, nil
}

// G returns the global configuration, or Default() when none was initialized.
func G() *Config {
	if global == nil {
		return Default()
	}
	return global
}

// InitializeGlobalConfig loads filename and makes it available through G().
// A missing file is not an error: the defaults are used instead.
func InitializeGlobalConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		global = Default()
		return global, nil
	}

	rawConfig, err := LoadConfig(filename)
	if err != nil {
		return nil, err
	}
	global = rawConfig
	return rawConfig, nil
}
